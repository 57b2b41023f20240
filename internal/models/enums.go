package models

// Role distinguishes the two kinds of account.
type Role string

const (
	RoleBrand      Role = "brand"
	RoleInfluencer Role = "influencer"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive CampaignStatus = "active"
	CampaignClosed CampaignStatus = "closed"
)

// Platform is one of the social networks a campaign runs on.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformTikTok    Platform = "TikTok"
	PlatformFacebook  Platform = "Facebook"
	PlatformSnapchat  Platform = "Snapchat"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformInstagram, PlatformTikTok, PlatformFacebook, PlatformSnapchat}

// Valid reports whether p belongs to the closed platform enumeration.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// AdStatus tracks whether a collaborator's ad is still running.
type AdStatus string

const (
	AdActive   AdStatus = "Active"
	AdFinished AdStatus = "Terminée"
)

// Entity kinds used in audit records and error messages.
const (
	KindUser             = "user"
	KindCampaign         = "campaign"
	KindCampaignPlatform = "campaign_platform"
	KindCollaborator     = "collaborator"
	KindConversation     = "conversation"
	KindMessage          = "message"
	KindAttachment       = "attachment"
	KindRating           = "rating"
)

// Audit actions.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionAdd      = "add"
	ActionRemove   = "remove"
	ActionReplace  = "replace"
	ActionSend     = "send"
	ActionMarkRead = "mark_read"
)
