package models

// User is a brand or influencer account.
type User struct {
	ID            string            `json:"id"`
	Role          Role              `json:"role"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Phone         *string           `json:"phone"`
	Bio           *string           `json:"bio"`
	SocialLinks   map[string]string `json:"social_links"`
	Platform      *Platform         `json:"platform"`
	FollowerCount int64             `json:"follower_count"`
	// RatingAvg is recomputed whenever a rating for this user is created.
	RatingAvg float64 `json:"rating_avg"`
	Lifecycle
}

func (u User) EntityID() string { return u.ID }
