package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/repository"
	appErr "github.com/brandlink/engine/pkg/errors"
)

func TestOpenOrCreateIsOrderIndependent(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, models.RoleBrand, "brand@acme.io")
	b := f.user(t, models.RoleInfluencer, "noa@example.com")

	first, err := f.conversations.OpenOrCreate(f.ctx, a, b)
	require.NoError(t, err)
	second, err := f.conversations.OpenOrCreate(f.ctx, b, a)
	require.NoError(t, err)
	third, err := f.conversations.OpenOrCreate(f.ctx, a, b)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, third.ID)
	assert.Zero(t, first.UnreadA)
	assert.Zero(t, first.UnreadB)
	assert.Len(t, f.persisted(t).Conversations, 1)
	assert.LessOrEqual(t, first.UserAID, first.UserBID)
}

func TestOpenOrCreateRejectsBadPairs(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, models.RoleBrand, "brand@acme.io")

	_, err := f.conversations.OpenOrCreate(f.ctx, a, a)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = f.conversations.OpenOrCreate(f.ctx, a, "ghost")
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestUnreadCountersAndMarkRead(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, models.RoleBrand, "brand@acme.io")
	b := f.user(t, models.RoleInfluencer, "noa@example.com")
	conv, err := f.conversations.OpenOrCreate(f.ctx, a, b)
	require.NoError(t, err)

	const n = 3
	sent := map[string]bool{}
	for range n {
		msg, err := f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: conv.ID, SenderID: a, Content: "hello"})
		require.NoError(t, err)
		sent[msg.ID] = true
	}
	reply, err := f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: conv.ID, SenderID: b, Content: "hi!"})
	require.NoError(t, err)

	summaries, err := f.conversations.ListForUser(f.ctx, b)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, n, summaries[0].Unread)
	assert.Equal(t, a, summaries[0].PeerID)
	require.NotNil(t, summaries[0].LastMessageAt)
	assert.Equal(t, reply.CreatedAt, *summaries[0].LastMessageAt)

	mine, err := f.conversations.ListForUser(f.ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 1, mine[0].Unread)

	stamped, err := f.conversations.MarkRead(f.ctx, conv.ID, b)
	require.NoError(t, err)
	assert.Equal(t, n, stamped)

	msgs, err := f.conversations.ListMessages(f.ctx, conv.ID, b)
	require.NoError(t, err)
	require.Len(t, msgs, n+1)
	for _, m := range msgs {
		if sent[m.ID] {
			assert.NotNil(t, m.ReadAt, "message %s should be read", m.ID)
		} else {
			assert.Nil(t, m.ReadAt, "reply must stay unread for a")
		}
	}

	persisted := f.persisted(t).Conversations[0]
	assert.Zero(t, persisted.UnreadFor(b))
	assert.Equal(t, 1, persisted.UnreadFor(a))

	again, err := f.conversations.MarkRead(f.ctx, conv.ID, b)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestSendMessageRules(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, models.RoleBrand, "brand@acme.io")
	b := f.user(t, models.RoleInfluencer, "noa@example.com")
	outsider := f.user(t, models.RoleInfluencer, "eve@example.com")
	conv, err := f.conversations.OpenOrCreate(f.ctx, a, b)
	require.NoError(t, err)

	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: conv.ID, SenderID: outsider, Content: "psst"})
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))

	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: conv.ID, SenderID: a, Content: "   "})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: "missing", SenderID: a, Content: "hi"})
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	_, err = f.conversations.MarkRead(f.ctx, conv.ID, outsider)
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))

	assert.Empty(t, f.persisted(t).Messages)
}

func TestSendMessageWithAttachment(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, models.RoleBrand, "brand@acme.io")
	b := f.user(t, models.RoleInfluencer, "noa@example.com")
	conv, err := f.conversations.OpenOrCreate(f.ctx, a, b)
	require.NoError(t, err)

	msg, err := f.conversations.SendMessage(f.ctx, SendMessageInput{
		ConversationID: conv.ID,
		SenderID:       a,
		Attachment: &repository.CreateAttachmentInput{
			FileName: "brief.pdf", MimeType: "application/pdf", SizeBytes: 1024,
			URL: "https://cdn.example.com/brief.pdf",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, msg.AttachmentID)

	att, err := f.attachments.GetByID(f.ctx, *msg.AttachmentID)
	require.NoError(t, err)
	require.NotNil(t, att.MessageID)
	assert.Equal(t, msg.ID, *att.MessageID)

	doc := f.persisted(t)
	require.Len(t, doc.Attachments, 1)
	require.Len(t, doc.Messages, 1)

	// An uploaded attachment can be referenced by exactly one message.
	uploaded, err := f.attachments.Create(f.ctx, repository.CreateAttachmentInput{
		FileName: "moodboard.png", MimeType: "image/png", URL: "https://cdn.example.com/m.png",
	})
	require.NoError(t, err)
	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: conv.ID, SenderID: b, AttachmentID: &uploaded})
	require.NoError(t, err)
	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: conv.ID, SenderID: b, AttachmentID: &uploaded})
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))

	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{
		ConversationID: conv.ID, SenderID: a,
		Attachment: &repository.CreateAttachmentInput{FileName: "x", MimeType: "text/plain", URL: "nope"},
	})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestListForUserOrdering(t *testing.T) {
	f := newFixture(t)
	me := f.user(t, models.RoleBrand, "brand@acme.io")
	p1 := f.user(t, models.RoleInfluencer, "one@example.com")
	p2 := f.user(t, models.RoleInfluencer, "two@example.com")
	p3 := f.user(t, models.RoleInfluencer, "three@example.com")

	c1, err := f.conversations.OpenOrCreate(f.ctx, me, p1)
	require.NoError(t, err)
	c2, err := f.conversations.OpenOrCreate(f.ctx, me, p2)
	require.NoError(t, err)
	c3, err := f.conversations.OpenOrCreate(f.ctx, p3, me)
	require.NoError(t, err)

	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: c2.ID, SenderID: p2, Content: "first"})
	require.NoError(t, err)
	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: c1.ID, SenderID: me, Content: "second"})
	require.NoError(t, err)

	list, err := f.conversations.ListForUser(f.ctx, me)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{c1.ID, c2.ID, c3.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Nil(t, list[2].LastMessageAt)
	assert.Equal(t, 1, list[1].Unread)
	assert.Zero(t, list[0].Unread)
}

func TestDeleteMessageAndConversation(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, models.RoleBrand, "brand@acme.io")
	b := f.user(t, models.RoleInfluencer, "noa@example.com")
	conv, err := f.conversations.OpenOrCreate(f.ctx, a, b)
	require.NoError(t, err)
	msg, err := f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: conv.ID, SenderID: a, Content: "oops"})
	require.NoError(t, err)

	assert.True(t, appErr.IsCode(f.conversations.DeleteMessage(f.ctx, msg.ID, b), appErr.CodeConflict))
	require.NoError(t, f.conversations.DeleteMessage(f.ctx, msg.ID, a))
	assert.True(t, appErr.IsCode(f.conversations.DeleteMessage(f.ctx, msg.ID, a), appErr.CodeNotFound))

	msgs, err := f.conversations.ListMessages(f.ctx, conv.ID, b)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	list, err := f.conversations.ListForUser(f.ctx, b)
	require.NoError(t, err)
	assert.Zero(t, list[0].Unread)

	outsider := f.user(t, models.RoleInfluencer, "eve@example.com")
	assert.True(t, appErr.IsCode(f.conversations.SoftDelete(f.ctx, conv.ID, outsider), appErr.CodeConflict))
	require.NoError(t, f.conversations.SoftDelete(f.ctx, conv.ID, b))
	assert.True(t, appErr.IsCode(f.conversations.SoftDelete(f.ctx, conv.ID, a), appErr.CodeNotFound))

	list, err = f.conversations.ListForUser(f.ctx, a)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: conv.ID, SenderID: a, Content: "hello?"})
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	fresh, err := f.conversations.OpenOrCreate(f.ctx, b, a)
	require.NoError(t, err)
	assert.NotEqual(t, conv.ID, fresh.ID)
}

func TestReturnedConversationDataIsDetached(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, models.RoleBrand, "brand@acme.io")
	b := f.user(t, models.RoleInfluencer, "noa@example.com")
	conv, err := f.conversations.OpenOrCreate(f.ctx, a, b)
	require.NoError(t, err)

	sent, err := f.conversations.SendMessage(f.ctx, SendMessageInput{
		ConversationID: conv.ID,
		SenderID:       a,
		Content:        "brief attached",
		Attachment: &repository.CreateAttachmentInput{
			FileName: "brief.pdf", MimeType: "application/pdf", URL: "https://cdn.example.com/brief.pdf",
		},
	})
	require.NoError(t, err)
	attachmentID := *sent.AttachmentID
	*sent.AttachmentID = "hijacked"

	_, err = f.conversations.SendMessage(f.ctx, SendMessageInput{ConversationID: conv.ID, SenderID: a, Content: "second"})
	require.NoError(t, err)
	_, err = f.conversations.MarkRead(f.ctx, conv.ID, b)
	require.NoError(t, err)

	msgs, err := f.conversations.ListMessages(f.ctx, conv.ID, b)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.NotNil(t, msgs[0].AttachmentID)
	assert.Equal(t, attachmentID, *msgs[0].AttachmentID)
	readAt := *msgs[1].ReadAt
	*msgs[0].ReadAt = readAt.AddDate(-10, 0, 0)

	list, err := f.conversations.ListForUser(f.ctx, a)
	require.NoError(t, err)
	lastMessageAt := *list[0].LastMessageAt
	*list[0].LastMessageAt = lastMessageAt.AddDate(-10, 0, 0)

	again, err := f.conversations.ListMessages(f.ctx, conv.ID, b)
	require.NoError(t, err)
	assert.Equal(t, readAt, *again[0].ReadAt)
	assert.Equal(t, readAt, *again[1].ReadAt)
	assert.Equal(t, attachmentID, *again[0].AttachmentID)

	reopened, err := f.conversations.OpenOrCreate(f.ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, lastMessageAt, *reopened.LastMessageAt)
}
