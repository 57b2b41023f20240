package models

import "maps"

// ClonePtr copies the pointee so the result shares no memory with p.
func ClonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (l Lifecycle) clone() Lifecycle {
	l.DeletedAt = ClonePtr(l.DeletedAt)
	return l
}

// Clone returns a copy that shares no pointers or maps with u.
func (u User) Clone() User {
	u.Phone = ClonePtr(u.Phone)
	u.Bio = ClonePtr(u.Bio)
	u.Platform = ClonePtr(u.Platform)
	u.SocialLinks = maps.Clone(u.SocialLinks)
	u.Lifecycle = u.Lifecycle.clone()
	return u
}

func (c Campaign) Clone() Campaign {
	c.StartDate = ClonePtr(c.StartDate)
	c.Lifecycle = c.Lifecycle.clone()
	return c
}

func (c Collaborator) Clone() Collaborator {
	c.InfluencerUserID = ClonePtr(c.InfluencerUserID)
	c.Phone = ClonePtr(c.Phone)
	c.Lifecycle = c.Lifecycle.clone()
	return c
}

func (c Conversation) Clone() Conversation {
	c.LastMessageAt = ClonePtr(c.LastMessageAt)
	c.Lifecycle = c.Lifecycle.clone()
	return c
}

func (m Message) Clone() Message {
	m.AttachmentID = ClonePtr(m.AttachmentID)
	m.ReadAt = ClonePtr(m.ReadAt)
	m.DeletedAt = ClonePtr(m.DeletedAt)
	return m
}

func (a Attachment) Clone() Attachment {
	a.MessageID = ClonePtr(a.MessageID)
	a.Lifecycle = a.Lifecycle.clone()
	return a
}

func (r Rating) Clone() Rating {
	r.Comment = ClonePtr(r.Comment)
	return r
}
