package models

// SchemaVersion is written into every persisted document.
const SchemaVersion = 1

// Document is the whole persisted state: one ordered sequence per entity kind
// plus the audit log.
type Document struct {
	SchemaVersion     int                `json:"schema_version"`
	Users             []User             `json:"users"`
	Campaigns         []Campaign         `json:"campaigns"`
	CampaignPlatforms []CampaignPlatform `json:"campaign_platforms"`
	Collaborators     []Collaborator     `json:"collaborators"`
	Conversations     []Conversation     `json:"conversations"`
	Messages          []Message          `json:"messages"`
	Attachments       []Attachment       `json:"attachments"`
	Ratings           []Rating           `json:"ratings"`
	AuditLog          []AuditLog         `json:"audit_log"`
}

// NewDocument returns an empty document with every collection initialised.
func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize replaces nil collections with empty ones so the serialized form
// always carries every sequence.
func (d *Document) Normalize() {
	if d.SchemaVersion == 0 {
		d.SchemaVersion = SchemaVersion
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Campaigns == nil {
		d.Campaigns = []Campaign{}
	}
	if d.CampaignPlatforms == nil {
		d.CampaignPlatforms = []CampaignPlatform{}
	}
	if d.Collaborators == nil {
		d.Collaborators = []Collaborator{}
	}
	if d.Conversations == nil {
		d.Conversations = []Conversation{}
	}
	if d.Messages == nil {
		d.Messages = []Message{}
	}
	if d.Attachments == nil {
		d.Attachments = []Attachment{}
	}
	if d.Ratings == nil {
		d.Ratings = []Rating{}
	}
	if d.AuditLog == nil {
		d.AuditLog = []AuditLog{}
	}
}

// FindUser returns the live user with id, or nil.
func (d *Document) FindUser(id string) *User {
	for i := range d.Users {
		if d.Users[i].ID == id && !d.Users[i].IsDeleted() {
			return &d.Users[i]
		}
	}
	return nil
}

// FindCampaign returns the live campaign with id, or nil.
func (d *Document) FindCampaign(id string) *Campaign {
	for i := range d.Campaigns {
		if d.Campaigns[i].ID == id && !d.Campaigns[i].IsDeleted() {
			return &d.Campaigns[i]
		}
	}
	return nil
}

// FindConversation returns the live conversation with id, or nil.
func (d *Document) FindConversation(id string) *Conversation {
	for i := range d.Conversations {
		if d.Conversations[i].ID == id && !d.Conversations[i].IsDeleted() {
			return &d.Conversations[i]
		}
	}
	return nil
}

// FindAttachment returns the live attachment with id, or nil.
func (d *Document) FindAttachment(id string) *Attachment {
	for i := range d.Attachments {
		if d.Attachments[i].ID == id && !d.Attachments[i].IsDeleted() {
			return &d.Attachments[i]
		}
	}
	return nil
}

// PlatformsOf returns the platforms linked to a campaign in stored order.
func (d *Document) PlatformsOf(campaignID string) []Platform {
	var out []Platform
	for _, link := range d.CampaignPlatforms {
		if link.CampaignID == campaignID {
			out = append(out, link.Platform)
		}
	}
	return out
}
