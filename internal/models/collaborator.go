package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Collaborator is an influencer engaged on a campaign for an agreed amount.
type Collaborator struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	// InfluencerUserID links the collaborator to a registered user when known.
	InfluencerUserID *string         `json:"influencer_user_id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            *string         `json:"phone"`
	AgreedAmount     decimal.Decimal `json:"agreed_amount"`
	Currency         string          `json:"currency"`
	AdStatus         AdStatus        `json:"ad_status"`
	Lifecycle
}

func (c Collaborator) EntityID() string { return c.ID }

// Represents reports whether the collaborator row stands for the given user,
// either through the explicit link or a case-insensitive email match.
func (c Collaborator) Represents(u User) bool {
	if c.InfluencerUserID != nil {
		return *c.InfluencerUserID == u.ID
	}
	return c.Email != "" && strings.EqualFold(strings.TrimSpace(c.Email), strings.TrimSpace(u.Email))
}
