// Package audit appends traceability records for mutating operations.
package audit

import (
	"context"

	"github.com/brandlink/engine/internal/identity"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/storage"
	"github.com/brandlink/engine/pkg/logger"
	"go.uber.org/zap"
)

// Recorder writes AuditLog entries through the storage engine.
type Recorder struct {
	store *storage.Engine
}

func NewRecorder(store *storage.Engine) *Recorder {
	return &Recorder{store: store}
}

// Record appends one entry attributed to the caller in ctx. It never fails the
// parent operation: errors are logged and dropped.
func (r *Recorder) Record(ctx context.Context, action, entity, entityID string) {
	entry := models.AuditLog{
		ID:        r.store.NewID(),
		UserID:    identity.Actor(ctx),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		CreatedAt: r.store.Now(),
	}
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		doc.AuditLog = append(doc.AuditLog, entry)
		return nil
	})
	if err != nil {
		logger.L().Warn("audit append failed",
			zap.String("action", action),
			zap.String("entity", entity),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}

// ForEntity returns the audit trail of one entity, oldest first. Records of
// soft-deleted entities are included.
func (r *Recorder) ForEntity(ctx context.Context, entity, entityID string) ([]models.AuditLog, error) {
	return r.filter(ctx, func(e models.AuditLog) bool {
		return e.Entity == entity && e.EntityID == entityID
	})
}

// ForUser returns every record attributed to userID, oldest first.
func (r *Recorder) ForUser(ctx context.Context, userID string) ([]models.AuditLog, error) {
	return r.filter(ctx, func(e models.AuditLog) bool { return e.UserID == userID })
}

func (r *Recorder) filter(ctx context.Context, keep func(models.AuditLog) bool) ([]models.AuditLog, error) {
	out := []models.AuditLog{}
	err := r.store.View(ctx, func(doc *models.Document) error {
		for _, e := range doc.AuditLog {
			if keep(e) {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}
