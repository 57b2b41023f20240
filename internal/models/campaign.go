package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is owned by one user and always linked to at least one platform.
type Campaign struct {
	ID              string          `json:"id"`
	OwnerUserID     string          `json:"owner_user_id"`
	BrandName       string          `json:"brand_name"`
	Description     string          `json:"description"`
	RevenueAmount   decimal.Decimal `json:"revenue_amount"`
	RevenueCurrency string          `json:"revenue_currency"`
	Status          CampaignStatus  `json:"status"`
	StartDate       *time.Time      `json:"start_date"`
	Lifecycle
}

func (c Campaign) EntityID() string { return c.ID }

// IsActive reports whether the campaign is live and running.
func (c Campaign) IsActive() bool {
	return !c.IsDeleted() && c.Status == CampaignActive
}

// CampaignPlatform links a campaign to a platform. The pair is its identity.
type CampaignPlatform struct {
	CampaignID string   `json:"campaign_id"`
	Platform   Platform `json:"platform"`
}
