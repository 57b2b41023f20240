package services

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/repository"
	"github.com/brandlink/engine/internal/storage"
	appErr "github.com/brandlink/engine/pkg/errors"
	"github.com/brandlink/engine/pkg/logger"
	"go.uber.org/zap"
)

// ConversationService keeps one thread per unordered pair of users with
// independent unread counters for each side.
type ConversationService interface {
	OpenOrCreate(ctx context.Context, userA, userB string) (models.Conversation, error)
	SendMessage(ctx context.Context, in SendMessageInput) (models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) (int, error)
	ListForUser(ctx context.Context, userID string) ([]ConversationSummary, error)
	ListMessages(ctx context.Context, conversationID, readerID string) ([]models.Message, error)
	DeleteMessage(ctx context.Context, messageID, callerID string) error
	SoftDelete(ctx context.Context, conversationID, callerID string) error
}

// SendMessageInput carries either a new attachment or the id of an uploaded
// one, never both.
type SendMessageInput struct {
	ConversationID string                            `json:"conversation_id"`
	SenderID       string                            `json:"sender_id"`
	Content        string                            `json:"content"`
	Attachment     *repository.CreateAttachmentInput `json:"attachment"`
	AttachmentID   *string                           `json:"attachment_id"`
}

// ConversationSummary is a conversation seen from one participant.
type ConversationSummary struct {
	models.Conversation
	PeerID string `json:"peer_id"`
	Unread int    `json:"unread"`
}

type conversationService struct {
	store *storage.Engine
	audit *audit.Recorder
}

var _ ConversationService = (*conversationService)(nil)

func NewConversationService(store *storage.Engine, rec *audit.Recorder) ConversationService {
	return &conversationService{store: store, audit: rec}
}

func (s *conversationService) OpenOrCreate(ctx context.Context, userA, userB string) (models.Conversation, error) {
	if userA == "" || userB == "" {
		return models.Conversation{}, appErr.Invalid("both participants are required")
	}
	if userA == userB {
		return models.Conversation{}, appErr.Invalid("a conversation needs two distinct participants")
	}
	a, b := models.NormalizePair(userA, userB)

	var out models.Conversation
	created := false
	err := s.store.Mutate(ctx, func(doc *models.Document) error {
		for _, id := range []string{a, b} {
			if doc.FindUser(id) == nil {
				return appErr.NotFound(models.KindUser, id)
			}
		}
		for _, c := range doc.Conversations {
			if !c.IsDeleted() && c.UserAID == a && c.UserBID == b {
				out = c.Clone()
				return nil
			}
		}
		out = models.Conversation{
			ID:        s.store.NewID(),
			UserAID:   a,
			UserBID:   b,
			Lifecycle: models.NewLifecycle(s.store.Now()),
		}
		doc.Conversations = append(doc.Conversations, out)
		created = true
		return nil
	})
	if err != nil {
		return models.Conversation{}, err
	}
	if created {
		logger.L().Debug("conversation opened", zap.String("conversation_id", out.ID))
		s.audit.Record(ctx, models.ActionCreate, models.KindConversation, out.ID)
	}
	return out, nil
}

func (s *conversationService) SendMessage(ctx context.Context, in SendMessageInput) (models.Message, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return models.Message{}, appErr.Invalid("conversation_id and sender_id are required")
	}
	if in.Attachment != nil && in.AttachmentID != nil {
		return models.Message{}, appErr.Invalid("pass either attachment or attachment_id, not both")
	}
	hasAttachment := in.Attachment != nil || in.AttachmentID != nil
	if strings.TrimSpace(in.Content) == "" && !hasAttachment {
		return models.Message{}, appErr.Invalid("a message needs content or an attachment")
	}
	if in.Attachment != nil {
		if err := in.Attachment.Validate(); err != nil {
			return models.Message{}, err
		}
	}

	var msg models.Message
	var newAttachmentID string
	err := s.store.Mutate(ctx, func(doc *models.Document) error {
		conv := doc.FindConversation(in.ConversationID)
		if conv == nil {
			return appErr.NotFound(models.KindConversation, in.ConversationID)
		}
		if !conv.HasParticipant(in.SenderID) {
			return appErr.Conflict("user %s is not a participant of conversation %s", in.SenderID, in.ConversationID)
		}
		var existing *models.Attachment
		if in.AttachmentID != nil {
			existing = doc.FindAttachment(*in.AttachmentID)
			if existing == nil {
				return appErr.NotFound(models.KindAttachment, *in.AttachmentID)
			}
			if existing.MessageID != nil {
				return appErr.Conflict("attachment %s is already attached to message %s", existing.ID, *existing.MessageID)
			}
		}

		// Nothing has been changed above this point.
		now := s.store.Now()
		msg = models.Message{
			ID:             s.store.NewID(),
			ConversationID: conv.ID,
			SenderID:       in.SenderID,
			Content:        in.Content,
			CreatedAt:      now,
		}
		messageID := msg.ID
		switch {
		case in.Attachment != nil:
			att := in.Attachment.Build(s.store.NewID(), now)
			att.MessageID = &messageID
			doc.Attachments = append(doc.Attachments, att)
			newAttachmentID = att.ID
			attachmentID := att.ID
			msg.AttachmentID = &attachmentID
		case existing != nil:
			existing.MessageID = &messageID
			existing.Touch(now)
			attachmentID := existing.ID
			msg.AttachmentID = &attachmentID
		}
		doc.Messages = append(doc.Messages, msg)
		msg = msg.Clone()

		conv.LastMessageAt = &now
		conv.IncrementUnread(in.SenderID)
		conv.Touch(now)
		return nil
	})
	if err != nil {
		return models.Message{}, err
	}
	if newAttachmentID != "" {
		s.audit.Record(ctx, models.ActionCreate, models.KindAttachment, newAttachmentID)
	}
	s.audit.Record(ctx, models.ActionSend, models.KindMessage, msg.ID)
	return msg, nil
}

// MarkRead clears the reader's unread counter and stamps read_at on the
// messages addressed to them. It returns how many messages were stamped.
func (s *conversationService) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	stamped := 0
	err := s.store.Mutate(ctx, func(doc *models.Document) error {
		conv := doc.FindConversation(conversationID)
		if conv == nil {
			return appErr.NotFound(models.KindConversation, conversationID)
		}
		if !conv.HasParticipant(readerID) {
			return appErr.Conflict("user %s is not a participant of conversation %s", readerID, conversationID)
		}
		now := s.store.Now()
		for i := range doc.Messages {
			m := &doc.Messages[i]
			if m.ConversationID != conversationID || m.SenderID == readerID || m.ReadAt != nil || m.IsDeleted() {
				continue
			}
			readAt := now
			m.ReadAt = &readAt
			stamped++
		}
		conv.ResetUnread(readerID)
		conv.Touch(now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.audit.Record(ctx, models.ActionMarkRead, models.KindConversation, conversationID)
	return stamped, nil
}

// ListForUser returns the user's conversations, most recent message first.
// Conversations without messages come last, newest first.
func (s *conversationService) ListForUser(ctx context.Context, userID string) ([]ConversationSummary, error) {
	out := []ConversationSummary{}
	err := s.store.View(ctx, func(doc *models.Document) error {
		for _, c := range doc.Conversations {
			if c.IsDeleted() || !c.HasParticipant(userID) {
				continue
			}
			out = append(out, ConversationSummary{
				Conversation: c.Clone(),
				PeerID:       c.Peer(userID),
				Unread:       c.UnreadFor(userID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(x, y ConversationSummary) int {
		return cmp.Or(
			compareLatest(x.LastMessageAt, y.LastMessageAt),
			y.CreatedAt.Compare(x.CreatedAt),
		)
	})
	return out, nil
}

// compareLatest orders later times first and nil last.
func compareLatest(x, y *time.Time) int {
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return 1
	case y == nil:
		return -1
	}
	return y.Compare(*x)
}

// ListMessages returns the live messages of a conversation, oldest first.
func (s *conversationService) ListMessages(ctx context.Context, conversationID, readerID string) ([]models.Message, error) {
	out := []models.Message{}
	err := s.store.View(ctx, func(doc *models.Document) error {
		conv := doc.FindConversation(conversationID)
		if conv == nil {
			return appErr.NotFound(models.KindConversation, conversationID)
		}
		if !conv.HasParticipant(readerID) {
			return appErr.Conflict("user %s is not a participant of conversation %s", readerID, conversationID)
		}
		for _, m := range doc.Messages {
			if m.ConversationID == conversationID && !m.IsDeleted() {
				out = append(out, m.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteMessage soft-deletes a message on behalf of its sender. An unread
// message no longer counts towards the recipient's unread counter.
func (s *conversationService) DeleteMessage(ctx context.Context, messageID, callerID string) error {
	err := s.store.Mutate(ctx, func(doc *models.Document) error {
		var msg *models.Message
		for i := range doc.Messages {
			if doc.Messages[i].ID == messageID && !doc.Messages[i].IsDeleted() {
				msg = &doc.Messages[i]
				break
			}
		}
		if msg == nil {
			return appErr.NotFound(models.KindMessage, messageID)
		}
		conv := doc.FindConversation(msg.ConversationID)
		if conv == nil {
			return appErr.NotFound(models.KindMessage, messageID)
		}
		if msg.SenderID != callerID {
			return appErr.Conflict("only the sender can delete message %s", messageID)
		}
		now := s.store.Now()
		msg.MarkDeleted(now)
		if msg.ReadAt == nil {
			conv.DecrementUnread(conv.Peer(msg.SenderID))
		}
		conv.Touch(now)
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, models.ActionDelete, models.KindMessage, messageID)
	return nil
}

// SoftDelete hides the conversation on behalf of one of its participants.
// Opening the same pair again starts a new one.
func (s *conversationService) SoftDelete(ctx context.Context, conversationID, callerID string) error {
	err := s.store.Mutate(ctx, func(doc *models.Document) error {
		conv := doc.FindConversation(conversationID)
		if conv == nil {
			return appErr.NotFound(models.KindConversation, conversationID)
		}
		if !conv.HasParticipant(callerID) {
			return appErr.Conflict("user %s is not a participant of conversation %s", callerID, conversationID)
		}
		conv.MarkDeleted(s.store.Now())
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, models.ActionDelete, models.KindConversation, conversationID)
	return nil
}
