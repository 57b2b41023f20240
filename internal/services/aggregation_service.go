package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/repository"
	"github.com/brandlink/engine/internal/storage"
	appErr "github.com/brandlink/engine/pkg/errors"
)

// AggregationService computes derived views. Every call scans the current
// document; nothing is cached.
type AggregationService interface {
	BrandTotalsSpent(ctx context.Context, ownerUserID string) (decimal.Decimal, error)
	BrandDashboard(ctx context.Context, ownerUserID string) (BrandDashboard, error)
	InfluencerCounters(ctx context.Context, userID string) (InfluencerCounters, error)
	RatingAverage(ctx context.Context, rateeUserID string) (float64, error)
}

type BrandDashboard struct {
	ActiveCampaigns     int             `json:"active_campaigns"`
	ActiveRevenue       decimal.Decimal `json:"active_revenue"`
	TotalSpent          decimal.Decimal `json:"total_spent"`
	ActiveCollaborators int             `json:"active_collaborators"`
}

type InfluencerCounters struct {
	Collaborations          int             `json:"collaborations"`
	ActiveCampaigns         int             `json:"active_campaigns"`
	CompletedCollaborations int             `json:"completed_collaborations"`
	TotalAgreed             decimal.Decimal `json:"total_agreed"`
	Conversations           int             `json:"conversations"`
	UnreadMessages          int             `json:"unread_messages"`
	RatingsReceived         int             `json:"ratings_received"`
	RatingAverage           float64         `json:"rating_average"`
}

type aggregationService struct {
	store *storage.Engine
}

var _ AggregationService = (*aggregationService)(nil)

func NewAggregationService(store *storage.Engine) AggregationService {
	return &aggregationService{store: store}
}

// spentLocked sums agreed amounts of live collaborators on the owner's live,
// active campaigns. Currencies are not converted.
func spentLocked(doc *models.Document, ownerUserID string) decimal.Decimal {
	total := decimal.Zero
	for _, c := range doc.Collaborators {
		if c.IsDeleted() {
			continue
		}
		camp := doc.FindCampaign(c.CampaignID)
		if camp == nil || camp.OwnerUserID != ownerUserID || !camp.IsActive() {
			continue
		}
		total = total.Add(c.AgreedAmount)
	}
	return total
}

func (s *aggregationService) BrandTotalsSpent(ctx context.Context, ownerUserID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := s.store.View(ctx, func(doc *models.Document) error {
		if doc.FindUser(ownerUserID) == nil {
			return appErr.NotFound(models.KindUser, ownerUserID)
		}
		total = spentLocked(doc, ownerUserID)
		return nil
	})
	return total, err
}

func (s *aggregationService) BrandDashboard(ctx context.Context, ownerUserID string) (BrandDashboard, error) {
	out := BrandDashboard{ActiveRevenue: decimal.Zero, TotalSpent: decimal.Zero}
	err := s.store.View(ctx, func(doc *models.Document) error {
		if doc.FindUser(ownerUserID) == nil {
			return appErr.NotFound(models.KindUser, ownerUserID)
		}
		active := map[string]bool{}
		for _, camp := range doc.Campaigns {
			if camp.OwnerUserID == ownerUserID && camp.IsActive() {
				active[camp.ID] = true
				out.ActiveCampaigns++
				out.ActiveRevenue = out.ActiveRevenue.Add(camp.RevenueAmount)
			}
		}
		for _, c := range doc.Collaborators {
			if !c.IsDeleted() && active[c.CampaignID] && c.AdStatus == models.AdActive {
				out.ActiveCollaborators++
			}
		}
		out.TotalSpent = spentLocked(doc, ownerUserID)
		return nil
	})
	return out, err
}

// InfluencerCounters counts collaborations that reference the user either by
// influencer_user_id or by a matching email, on campaigns that still exist.
func (s *aggregationService) InfluencerCounters(ctx context.Context, userID string) (InfluencerCounters, error) {
	out := InfluencerCounters{TotalAgreed: decimal.Zero}
	err := s.store.View(ctx, func(doc *models.Document) error {
		u := doc.FindUser(userID)
		if u == nil {
			return appErr.NotFound(models.KindUser, userID)
		}
		activeCampaigns := map[string]bool{}
		for _, c := range doc.Collaborators {
			if c.IsDeleted() || !c.Represents(*u) {
				continue
			}
			camp := doc.FindCampaign(c.CampaignID)
			if camp == nil {
				continue
			}
			out.Collaborations++
			out.TotalAgreed = out.TotalAgreed.Add(c.AgreedAmount)
			if c.AdStatus == models.AdFinished {
				out.CompletedCollaborations++
			}
			if camp.IsActive() {
				activeCampaigns[camp.ID] = true
			}
		}
		out.ActiveCampaigns = len(activeCampaigns)

		for _, conv := range doc.Conversations {
			if !conv.IsDeleted() && conv.HasParticipant(userID) {
				out.Conversations++
				out.UnreadMessages += conv.UnreadFor(userID)
			}
		}
		for _, rt := range doc.Ratings {
			if rt.RateeID == userID {
				out.RatingsReceived++
			}
		}
		out.RatingAverage = repository.RatingAverage(doc, userID)
		return nil
	})
	return out, err
}

// RatingAverage recomputes the mean from the ratings. users.rating_avg is
// only a cached copy of this value.
func (s *aggregationService) RatingAverage(ctx context.Context, rateeUserID string) (float64, error) {
	var avg float64
	err := s.store.View(ctx, func(doc *models.Document) error {
		if doc.FindUser(rateeUserID) == nil {
			return appErr.NotFound(models.KindUser, rateeUserID)
		}
		avg = repository.RatingAverage(doc, rateeUserID)
		return nil
	})
	return avg, err
}
