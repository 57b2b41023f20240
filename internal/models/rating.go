package models

import "time"

// Rating is append-only: it is never updated nor deleted.
type Rating struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	RaterID    string    `json:"rater_id"`
	RateeID    string    `json:"ratee_id"`
	Score      int       `json:"score"`
	Comment    *string   `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
