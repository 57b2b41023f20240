package repository

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/storage"
	"github.com/brandlink/engine/internal/validators"
	appErr "github.com/brandlink/engine/pkg/errors"
)

type CampaignRepository interface {
	Create(ctx context.Context, in CreateCampaignInput) (string, error)
	GetByID(ctx context.Context, id string) (models.Campaign, error)
	Update(ctx context.Context, id string, patch CampaignPatch) (models.Campaign, error)
	SoftDelete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, status *models.CampaignStatus) ([]models.Campaign, error)
	ListByPlatform(ctx context.Context, platform models.Platform) ([]models.Campaign, error)

	Platforms(ctx context.Context, campaignID string) ([]models.Platform, error)
	AddPlatform(ctx context.Context, campaignID string, platform models.Platform) error
	RemovePlatform(ctx context.Context, campaignID string, platform models.Platform) error
	ReplacePlatforms(ctx context.Context, campaignID string, platforms []models.Platform) error
}

type CreateCampaignInput struct {
	OwnerUserID     string                `json:"owner_user_id" validate:"required"`
	BrandName       string                `json:"brand_name" validate:"required,notblank,max=200"`
	Description     string                `json:"description" validate:"max=5000"`
	RevenueAmount   decimal.Decimal       `json:"revenue_amount" validate:"gte=0"`
	RevenueCurrency string                `json:"revenue_currency" validate:"required,iso4217"`
	Status          models.CampaignStatus `json:"status" validate:"omitempty,oneof=active closed"`
	StartDate       *time.Time            `json:"start_date"`
	Platforms       []models.Platform     `json:"platforms" validate:"required,min=1,dive,oneof=Instagram TikTok Facebook Snapchat"`
}

type CampaignPatch struct {
	BrandName       models.Opt[string]                `json:"brand_name"`
	Description     models.Opt[string]                `json:"description"`
	RevenueAmount   models.Opt[decimal.Decimal]       `json:"revenue_amount"`
	RevenueCurrency models.Opt[string]                `json:"revenue_currency"`
	Status          models.Opt[models.CampaignStatus] `json:"status"`
	StartDate       models.Opt[time.Time]             `json:"start_date"`
}

func (p CampaignPatch) validate() error {
	return firstErr(
		checkOpt("brand_name", p.BrandName, false, "required,notblank,max=200"),
		checkOpt("description", p.Description, false, "max=5000"),
		checkOpt("revenue_amount", p.RevenueAmount, false, "gte=0"),
		checkOpt("revenue_currency", p.RevenueCurrency, false, "required,iso4217"),
		checkOpt("status", p.Status, false, "oneof=active closed"),
		checkOpt("start_date", p.StartDate, true, ""),
	)
}

type campaignRepository struct {
	baseRepository[models.Campaign, *models.Campaign]
}

var _ CampaignRepository = (*campaignRepository)(nil)

func NewCampaignRepository(store *storage.Engine, rec *audit.Recorder) CampaignRepository {
	return &campaignRepository{baseRepository[models.Campaign, *models.Campaign]{
		store: store,
		audit: rec,
		kind:  models.KindCampaign,
		rows:  func(doc *models.Document) *[]models.Campaign { return &doc.Campaigns },
	}}
}

// uniquePlatforms drops duplicates while keeping first-seen order.
func uniquePlatforms(in []models.Platform) []models.Platform {
	out := make([]models.Platform, 0, len(in))
	for _, p := range in {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *campaignRepository) Create(ctx context.Context, in CreateCampaignInput) (string, error) {
	in.BrandName = strings.TrimSpace(in.BrandName)
	in.RevenueCurrency = strings.ToUpper(strings.TrimSpace(in.RevenueCurrency))
	if in.Status == "" {
		in.Status = models.CampaignActive
	}
	if err := validators.Check(in); err != nil {
		return "", err
	}
	platforms := uniquePlatforms(in.Platforms)

	id := r.store.NewID()
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		if doc.FindUser(in.OwnerUserID) == nil {
			return appErr.NotFound(models.KindUser, in.OwnerUserID)
		}
		doc.Campaigns = append(doc.Campaigns, models.Campaign{
			ID:              id,
			OwnerUserID:     in.OwnerUserID,
			BrandName:       in.BrandName,
			Description:     in.Description,
			RevenueAmount:   in.RevenueAmount,
			RevenueCurrency: in.RevenueCurrency,
			Status:          in.Status,
			StartDate:       models.ClonePtr(in.StartDate),
			Lifecycle:       models.NewLifecycle(r.store.Now()),
		})
		for _, p := range platforms {
			doc.CampaignPlatforms = append(doc.CampaignPlatforms, models.CampaignPlatform{CampaignID: id, Platform: p})
		}
		return nil
	})
	if err := r.finish(ctx, err, models.ActionCreate, id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *campaignRepository) Update(ctx context.Context, id string, patch CampaignPatch) (models.Campaign, error) {
	if patch.RevenueCurrency.HasValue() {
		patch.RevenueCurrency.Val = strings.ToUpper(strings.TrimSpace(patch.RevenueCurrency.Val))
	}
	if err := patch.validate(); err != nil {
		return models.Campaign{}, err
	}

	var out models.Campaign
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		c, err := r.find(doc, id)
		if err != nil {
			return err
		}
		if patch.BrandName.HasValue() {
			c.BrandName = strings.TrimSpace(patch.BrandName.Val)
		}
		if patch.Description.HasValue() {
			c.Description = patch.Description.Val
		}
		if patch.RevenueAmount.HasValue() {
			c.RevenueAmount = patch.RevenueAmount.Val
		}
		if patch.RevenueCurrency.HasValue() {
			c.RevenueCurrency = patch.RevenueCurrency.Val
		}
		if patch.Status.HasValue() {
			c.Status = patch.Status.Val
		}
		patch.StartDate.ApplyTo(&c.StartDate)
		c.Touch(r.store.Now())
		out = detach(*c)
		return nil
	})
	if err := r.finish(ctx, err, models.ActionUpdate, id); err != nil {
		return models.Campaign{}, err
	}
	return out, nil
}

func (r *campaignRepository) ListByOwner(ctx context.Context, ownerID string, status *models.CampaignStatus) ([]models.Campaign, error) {
	return r.list(ctx, func(_ *models.Document, c *models.Campaign) bool {
		return c.OwnerUserID == ownerID && (status == nil || c.Status == *status)
	})
}

func (r *campaignRepository) ListByPlatform(ctx context.Context, platform models.Platform) ([]models.Campaign, error) {
	return r.list(ctx, func(doc *models.Document, c *models.Campaign) bool {
		return slices.Contains(doc.PlatformsOf(c.ID), platform)
	})
}

func (r *campaignRepository) Platforms(ctx context.Context, campaignID string) ([]models.Platform, error) {
	var out []models.Platform
	err := r.store.View(ctx, func(doc *models.Document) error {
		if _, err := r.find(doc, campaignID); err != nil {
			return err
		}
		out = doc.PlatformsOf(campaignID)
		return nil
	})
	return out, err
}

func checkPlatform(p models.Platform) error {
	if !p.Valid() {
		return appErr.Invalid("platform must be one of [Instagram TikTok Facebook Snapchat]").
			WithMeta("fields", []string{"platform"})
	}
	return nil
}

// AddPlatform links platform to the campaign. Adding an existing link is a
// no-op that still refreshes updated_at.
func (r *campaignRepository) AddPlatform(ctx context.Context, campaignID string, platform models.Platform) error {
	if err := checkPlatform(platform); err != nil {
		return err
	}
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		c, err := r.find(doc, campaignID)
		if err != nil {
			return err
		}
		if !slices.Contains(doc.PlatformsOf(campaignID), platform) {
			doc.CampaignPlatforms = append(doc.CampaignPlatforms, models.CampaignPlatform{CampaignID: campaignID, Platform: platform})
		}
		c.Touch(r.store.Now())
		return nil
	})
	if err != nil {
		return err
	}
	r.audit.Record(ctx, models.ActionAdd, models.KindCampaignPlatform, campaignID+":"+string(platform))
	return nil
}

// RemovePlatform unlinks platform. A campaign keeps at least one platform.
func (r *campaignRepository) RemovePlatform(ctx context.Context, campaignID string, platform models.Platform) error {
	if err := checkPlatform(platform); err != nil {
		return err
	}
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		c, err := r.find(doc, campaignID)
		if err != nil {
			return err
		}
		current := doc.PlatformsOf(campaignID)
		if !slices.Contains(current, platform) {
			return appErr.NotFound(models.KindCampaignPlatform, campaignID+":"+string(platform))
		}
		if len(current) == 1 {
			return appErr.Conflict("campaign %s must keep at least one platform", campaignID)
		}
		doc.CampaignPlatforms = slices.DeleteFunc(doc.CampaignPlatforms, func(link models.CampaignPlatform) bool {
			return link.CampaignID == campaignID && link.Platform == platform
		})
		c.Touch(r.store.Now())
		return nil
	})
	if err != nil {
		return err
	}
	r.audit.Record(ctx, models.ActionRemove, models.KindCampaignPlatform, campaignID+":"+string(platform))
	return nil
}

// ReplacePlatforms swaps the full platform set for a non-empty one.
func (r *campaignRepository) ReplacePlatforms(ctx context.Context, campaignID string, platforms []models.Platform) error {
	in := struct {
		Platforms []models.Platform `json:"platforms" validate:"required,min=1,dive,oneof=Instagram TikTok Facebook Snapchat"`
	}{Platforms: platforms}
	if err := validators.Check(in); err != nil {
		return err
	}
	platforms = uniquePlatforms(platforms)

	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		c, err := r.find(doc, campaignID)
		if err != nil {
			return err
		}
		doc.CampaignPlatforms = slices.DeleteFunc(doc.CampaignPlatforms, func(link models.CampaignPlatform) bool {
			return link.CampaignID == campaignID
		})
		for _, p := range platforms {
			doc.CampaignPlatforms = append(doc.CampaignPlatforms, models.CampaignPlatform{CampaignID: campaignID, Platform: p})
		}
		c.Touch(r.store.Now())
		return nil
	})
	if err != nil {
		return err
	}
	r.audit.Record(ctx, models.ActionReplace, models.KindCampaignPlatform, campaignID)
	return nil
}
