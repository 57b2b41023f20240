package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandlink/engine/internal/identity"
	"github.com/brandlink/engine/internal/repository"
	"github.com/brandlink/engine/internal/services"
)

// ConversationsHandler acts on behalf of the caller: the caller is the
// sender, the reader and one side of every opened pair.
type ConversationsHandler struct {
	conversations services.ConversationService
}

func NewConversationsHandler(conversations services.ConversationService) *ConversationsHandler {
	return &ConversationsHandler{conversations: conversations}
}

func (h *ConversationsHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeerID string `json:"peer_id"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.conversations.OpenOrCreate(r.Context(), identity.Actor(r.Context()), req.PeerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.conversations.ListForUser(r.Context(), identity.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}

func (h *ConversationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.conversations.SoftDelete(r.Context(), chi.URLParam(r, "id"), identity.Actor(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ConversationsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	items, err := h.conversations.ListMessages(r.Context(), chi.URLParam(r, "id"), identity.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, items)
}

func (h *ConversationsHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content      string                            `json:"content"`
		Attachment   *repository.CreateAttachmentInput `json:"attachment"`
		AttachmentID *string                           `json:"attachment_id"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.conversations.SendMessage(r.Context(), services.SendMessageInput{
		ConversationID: chi.URLParam(r, "id"),
		SenderID:       identity.Actor(r.Context()),
		Content:        req.Content,
		Attachment:     req.Attachment,
		AttachmentID:   req.AttachmentID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, m)
}

func (h *ConversationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.conversations.MarkRead(r.Context(), chi.URLParam(r, "id"), identity.Actor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"marked": n})
}

func (h *ConversationsHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.conversations.DeleteMessage(r.Context(), chi.URLParam(r, "id"), identity.Actor(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
