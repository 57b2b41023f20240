package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCloneCopiesPointees(t *testing.T) {
	at := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	id := "a-1"
	deleted := Lifecycle{CreatedAt: at, UpdatedAt: at, DeletedAt: &at}

	msg := Message{ID: "m-1", AttachmentID: &id, ReadAt: &at, DeletedAt: &at}
	m := msg.Clone()
	assert.Equal(t, msg, m)
	assert.NotSame(t, msg.AttachmentID, m.AttachmentID)
	assert.NotSame(t, msg.ReadAt, m.ReadAt)
	assert.NotSame(t, msg.DeletedAt, m.DeletedAt)

	conv := Conversation{ID: "c-1", LastMessageAt: &at, Lifecycle: deleted}
	c := conv.Clone()
	assert.Equal(t, conv, c)
	assert.NotSame(t, conv.LastMessageAt, c.LastMessageAt)
	assert.NotSame(t, conv.DeletedAt, c.DeletedAt)

	att := Attachment{ID: id, MessageID: &msg.ID}
	assert.NotSame(t, att.MessageID, att.Clone().MessageID)

	p := PlatformInstagram
	u := User{ID: "u-1", Platform: &p, SocialLinks: map[string]string{"ig": "https://instagram.com/noa"}}
	uc := u.Clone()
	uc.SocialLinks["ig"] = "changed"
	*uc.Platform = PlatformTikTok
	assert.Equal(t, "https://instagram.com/noa", u.SocialLinks["ig"])
	assert.Equal(t, PlatformInstagram, *u.Platform)

	var empty Campaign
	assert.Nil(t, empty.Clone().StartDate)
}
