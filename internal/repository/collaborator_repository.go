package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/storage"
	"github.com/brandlink/engine/internal/validators"
	appErr "github.com/brandlink/engine/pkg/errors"
)

type CollaboratorRepository interface {
	Create(ctx context.Context, in CreateCollaboratorInput) (string, error)
	GetByID(ctx context.Context, id string) (models.Collaborator, error)
	Update(ctx context.Context, id string, patch CollaboratorPatch) (models.Collaborator, error)
	SoftDelete(ctx context.Context, id string) error
	ListByCampaign(ctx context.Context, campaignID string) ([]models.Collaborator, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Collaborator, error)
}

type CreateCollaboratorInput struct {
	CampaignID       string          `json:"campaign_id" validate:"required"`
	InfluencerUserID *string         `json:"influencer_user_id" validate:"omitempty,notblank"`
	Name             string          `json:"name" validate:"required,notblank,max=200"`
	Email            string          `json:"email" validate:"omitempty,email"`
	Phone            *string         `json:"phone" validate:"omitempty,max=32"`
	AgreedAmount     decimal.Decimal `json:"agreed_amount" validate:"gte=0"`
	Currency         string          `json:"currency" validate:"required,iso4217"`
	AdStatus         models.AdStatus `json:"ad_status" validate:"omitempty,oneof=Active Terminée"`
}

// CollaboratorPatch updates a collaborator. The owning campaign is fixed.
type CollaboratorPatch struct {
	InfluencerUserID models.Opt[string]          `json:"influencer_user_id"`
	Name             models.Opt[string]          `json:"name"`
	Email            models.Opt[string]          `json:"email"`
	Phone            models.Opt[string]          `json:"phone"`
	AgreedAmount     models.Opt[decimal.Decimal] `json:"agreed_amount"`
	Currency         models.Opt[string]          `json:"currency"`
	AdStatus         models.Opt[models.AdStatus] `json:"ad_status"`
}

func (p CollaboratorPatch) validate() error {
	return firstErr(
		checkOpt("influencer_user_id", p.InfluencerUserID, true, "required,notblank"),
		checkOpt("name", p.Name, false, "required,notblank,max=200"),
		checkOpt("email", p.Email, false, "omitempty,email"),
		checkOpt("phone", p.Phone, true, "max=32"),
		checkOpt("agreed_amount", p.AgreedAmount, false, "gte=0"),
		checkOpt("currency", p.Currency, false, "required,iso4217"),
		checkOpt("ad_status", p.AdStatus, false, "oneof=Active Terminée"),
	)
}

type collaboratorRepository struct {
	baseRepository[models.Collaborator, *models.Collaborator]
}

var _ CollaboratorRepository = (*collaboratorRepository)(nil)

// NewCollaboratorRepository returns a repository in which collaborators of a
// soft-deleted campaign are invisible, although their rows are not deleted.
func NewCollaboratorRepository(store *storage.Engine, rec *audit.Recorder) CollaboratorRepository {
	return &collaboratorRepository{baseRepository[models.Collaborator, *models.Collaborator]{
		store: store,
		audit: rec,
		kind:  models.KindCollaborator,
		rows:  func(doc *models.Document) *[]models.Collaborator { return &doc.Collaborators },
		visible: func(doc *models.Document, c *models.Collaborator) bool {
			return doc.FindCampaign(c.CampaignID) != nil
		},
	}}
}

func (r *collaboratorRepository) Create(ctx context.Context, in CreateCollaboratorInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.AdStatus == "" {
		in.AdStatus = models.AdActive
	}
	if err := validators.Check(in); err != nil {
		return "", err
	}

	id := r.store.NewID()
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		if doc.FindCampaign(in.CampaignID) == nil {
			return appErr.NotFound(models.KindCampaign, in.CampaignID)
		}
		if in.InfluencerUserID != nil && doc.FindUser(*in.InfluencerUserID) == nil {
			return appErr.NotFound(models.KindUser, *in.InfluencerUserID)
		}
		doc.Collaborators = append(doc.Collaborators, models.Collaborator{
			ID:               id,
			CampaignID:       in.CampaignID,
			InfluencerUserID: models.ClonePtr(in.InfluencerUserID),
			Name:             in.Name,
			Email:            in.Email,
			Phone:            models.ClonePtr(in.Phone),
			AgreedAmount:     in.AgreedAmount,
			Currency:         in.Currency,
			AdStatus:         in.AdStatus,
			Lifecycle:        models.NewLifecycle(r.store.Now()),
		})
		return nil
	})
	if err := r.finish(ctx, err, models.ActionCreate, id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *collaboratorRepository) Update(ctx context.Context, id string, patch CollaboratorPatch) (models.Collaborator, error) {
	if patch.Email.HasValue() {
		patch.Email.Val = normalizeEmail(patch.Email.Val)
	}
	if patch.Currency.HasValue() {
		patch.Currency.Val = strings.ToUpper(strings.TrimSpace(patch.Currency.Val))
	}
	if err := patch.validate(); err != nil {
		return models.Collaborator{}, err
	}

	var out models.Collaborator
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		c, err := r.find(doc, id)
		if err != nil {
			return err
		}
		if patch.InfluencerUserID.HasValue() && doc.FindUser(patch.InfluencerUserID.Val) == nil {
			return appErr.NotFound(models.KindUser, patch.InfluencerUserID.Val)
		}
		patch.InfluencerUserID.ApplyTo(&c.InfluencerUserID)
		if patch.Name.HasValue() {
			c.Name = strings.TrimSpace(patch.Name.Val)
		}
		if patch.Email.HasValue() {
			c.Email = patch.Email.Val
		}
		patch.Phone.ApplyTo(&c.Phone)
		if patch.AgreedAmount.HasValue() {
			c.AgreedAmount = patch.AgreedAmount.Val
		}
		if patch.Currency.HasValue() {
			c.Currency = patch.Currency.Val
		}
		if patch.AdStatus.HasValue() {
			c.AdStatus = patch.AdStatus.Val
		}
		c.Touch(r.store.Now())
		out = detach(*c)
		return nil
	})
	if err := r.finish(ctx, err, models.ActionUpdate, id); err != nil {
		return models.Collaborator{}, err
	}
	return out, nil
}

// ListByCampaign returns an empty list when the campaign itself is deleted.
func (r *collaboratorRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.Collaborator, error) {
	return r.list(ctx, func(_ *models.Document, c *models.Collaborator) bool {
		return c.CampaignID == campaignID
	})
}

func (r *collaboratorRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Collaborator, error) {
	return r.list(ctx, func(doc *models.Document, c *models.Collaborator) bool {
		camp := doc.FindCampaign(c.CampaignID)
		return camp != nil && camp.OwnerUserID == ownerID
	})
}
