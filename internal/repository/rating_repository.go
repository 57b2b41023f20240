package repository

import (
	"context"
	"math"

	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/storage"
	"github.com/brandlink/engine/internal/validators"
	appErr "github.com/brandlink/engine/pkg/errors"
)

// RatingRepository is append-only: ratings are never updated nor deleted.
type RatingRepository interface {
	Create(ctx context.Context, in CreateRatingInput) (string, error)
	ListByRatee(ctx context.Context, rateeID string) ([]models.Rating, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]models.Rating, error)
}

type CreateRatingInput struct {
	CampaignID string  `json:"campaign_id" validate:"required"`
	RaterID    string  `json:"rater_id" validate:"required"`
	RateeID    string  `json:"ratee_id" validate:"required,nefield=RaterID"`
	Score      int     `json:"score" validate:"min=1,max=5"`
	Comment    *string `json:"comment" validate:"omitempty,max=2000"`
}

type ratingRepository struct {
	store *storage.Engine
	audit *audit.Recorder
}

var _ RatingRepository = (*ratingRepository)(nil)

func NewRatingRepository(store *storage.Engine, rec *audit.Recorder) RatingRepository {
	return &ratingRepository{store: store, audit: rec}
}

// RatingAverage is the mean score received by rateeID rounded to two
// decimals, or 0 when there are no ratings.
func RatingAverage(doc *models.Document, rateeID string) float64 {
	sum, n := 0, 0
	for _, rt := range doc.Ratings {
		if rt.RateeID == rateeID {
			sum += rt.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*100) / 100
}

// Create appends the rating, recomputes the ratee's rating_avg over all of
// their ratings and persists both in one write.
func (r *ratingRepository) Create(ctx context.Context, in CreateRatingInput) (string, error) {
	if err := validators.Check(in); err != nil {
		return "", err
	}

	id := r.store.NewID()
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		if doc.FindCampaign(in.CampaignID) == nil {
			return appErr.NotFound(models.KindCampaign, in.CampaignID)
		}
		if doc.FindUser(in.RaterID) == nil {
			return appErr.NotFound(models.KindUser, in.RaterID)
		}
		ratee := doc.FindUser(in.RateeID)
		if ratee == nil {
			return appErr.NotFound(models.KindUser, in.RateeID)
		}
		now := r.store.Now()
		doc.Ratings = append(doc.Ratings, models.Rating{
			ID:         id,
			CampaignID: in.CampaignID,
			RaterID:    in.RaterID,
			RateeID:    in.RateeID,
			Score:      in.Score,
			Comment:    models.ClonePtr(in.Comment),
			CreatedAt:  now,
		})
		ratee.RatingAvg = RatingAverage(doc, in.RateeID)
		ratee.Touch(now)
		return nil
	})
	if err != nil {
		return "", err
	}
	r.audit.Record(ctx, models.ActionCreate, models.KindRating, id)
	return id, nil
}

func (r *ratingRepository) ListByRatee(ctx context.Context, rateeID string) ([]models.Rating, error) {
	return r.filter(ctx, func(rt models.Rating) bool { return rt.RateeID == rateeID })
}

func (r *ratingRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.Rating, error) {
	return r.filter(ctx, func(rt models.Rating) bool { return rt.CampaignID == campaignID })
}

func (r *ratingRepository) filter(ctx context.Context, keep func(models.Rating) bool) ([]models.Rating, error) {
	out := []models.Rating{}
	err := r.store.View(ctx, func(doc *models.Document) error {
		for _, rt := range doc.Ratings {
			if keep(rt) {
				out = append(out, rt.Clone())
			}
		}
		return nil
	})
	return out, err
}
