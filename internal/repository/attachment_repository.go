package repository

import (
	"context"
	"strings"
	"time"

	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/storage"
	"github.com/brandlink/engine/internal/validators"
)

type AttachmentRepository interface {
	Create(ctx context.Context, in CreateAttachmentInput) (string, error)
	GetByID(ctx context.Context, id string) (models.Attachment, error)
	Update(ctx context.Context, id string, patch AttachmentPatch) (models.Attachment, error)
	SoftDelete(ctx context.Context, id string) error
	ListUnattached(ctx context.Context) ([]models.Attachment, error)
}

type CreateAttachmentInput struct {
	FileName  string `json:"file_name" validate:"required,notblank,max=255"`
	MimeType  string `json:"mime_type" validate:"required,max=127"`
	SizeBytes int64  `json:"size_bytes" validate:"gte=0"`
	URL       string `json:"url" validate:"required,url"`
}

// Validate checks the input on its own, before any lookup.
func (in CreateAttachmentInput) Validate() error {
	return validators.Check(in)
}

// Build returns the row for a validated input.
func (in CreateAttachmentInput) Build(id string, now time.Time) models.Attachment {
	return models.Attachment{
		ID:        id,
		FileName:  strings.TrimSpace(in.FileName),
		MimeType:  in.MimeType,
		SizeBytes: in.SizeBytes,
		URL:       in.URL,
		Lifecycle: models.NewLifecycle(now),
	}
}

// AttachmentPatch updates file metadata. The message link is owned by the
// conversation engine.
type AttachmentPatch struct {
	FileName  models.Opt[string] `json:"file_name"`
	MimeType  models.Opt[string] `json:"mime_type"`
	SizeBytes models.Opt[int64]  `json:"size_bytes"`
	URL       models.Opt[string] `json:"url"`
}

func (p AttachmentPatch) validate() error {
	return firstErr(
		checkOpt("file_name", p.FileName, false, "required,notblank,max=255"),
		checkOpt("mime_type", p.MimeType, false, "required,max=127"),
		checkOpt("size_bytes", p.SizeBytes, false, "gte=0"),
		checkOpt("url", p.URL, false, "required,url"),
	)
}

type attachmentRepository struct {
	baseRepository[models.Attachment, *models.Attachment]
}

var _ AttachmentRepository = (*attachmentRepository)(nil)

func NewAttachmentRepository(store *storage.Engine, rec *audit.Recorder) AttachmentRepository {
	return &attachmentRepository{baseRepository[models.Attachment, *models.Attachment]{
		store: store,
		audit: rec,
		kind:  models.KindAttachment,
		rows:  func(doc *models.Document) *[]models.Attachment { return &doc.Attachments },
	}}
}

func (r *attachmentRepository) Create(ctx context.Context, in CreateAttachmentInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	row := in.Build(r.store.NewID(), r.store.Now())
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		doc.Attachments = append(doc.Attachments, row)
		return nil
	})
	if err := r.finish(ctx, err, models.ActionCreate, row.ID); err != nil {
		return "", err
	}
	return row.ID, nil
}

func (r *attachmentRepository) Update(ctx context.Context, id string, patch AttachmentPatch) (models.Attachment, error) {
	if err := patch.validate(); err != nil {
		return models.Attachment{}, err
	}
	var out models.Attachment
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		a, err := r.find(doc, id)
		if err != nil {
			return err
		}
		if patch.FileName.HasValue() {
			a.FileName = strings.TrimSpace(patch.FileName.Val)
		}
		if patch.MimeType.HasValue() {
			a.MimeType = patch.MimeType.Val
		}
		if patch.SizeBytes.HasValue() {
			a.SizeBytes = patch.SizeBytes.Val
		}
		if patch.URL.HasValue() {
			a.URL = patch.URL.Val
		}
		a.Touch(r.store.Now())
		out = detach(*a)
		return nil
	})
	if err := r.finish(ctx, err, models.ActionUpdate, id); err != nil {
		return models.Attachment{}, err
	}
	return out, nil
}

// ListUnattached returns uploads not yet referenced by any message.
func (r *attachmentRepository) ListUnattached(ctx context.Context) ([]models.Attachment, error) {
	return r.list(ctx, func(_ *models.Document, a *models.Attachment) bool { return a.MessageID == nil })
}
