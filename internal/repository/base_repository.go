package repository

import (
	"context"
	"time"

	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/storage"
	appErr "github.com/brandlink/engine/pkg/errors"
)

// entity is the pointer form of a soft-deletable model.
type entity[T any] interface {
	*T
	EntityID() string
	IsDeleted() bool
	MarkDeleted(at time.Time)
}

// baseRepository implements lookup, listing and soft delete for one
// collection of the document.
type baseRepository[T any, P entity[T]] struct {
	store *storage.Engine
	audit *audit.Recorder
	kind  string
	rows  func(doc *models.Document) *[]T
	// visible hides live rows whose parent is gone. Nil means always visible.
	visible func(doc *models.Document, row *T) bool
}

// find returns the live, visible row with id or a not-found error.
func (r *baseRepository[T, P]) find(doc *models.Document, id string) (*T, error) {
	rows := *r.rows(doc)
	for i := range rows {
		p := P(&rows[i])
		if p.EntityID() != id {
			continue
		}
		if p.IsDeleted() || (r.visible != nil && !r.visible(doc, &rows[i])) {
			break
		}
		return &rows[i], nil
	}
	return nil, appErr.NotFound(r.kind, id)
}

// GetByID returns a copy of the live row with id.
func (r *baseRepository[T, P]) GetByID(ctx context.Context, id string) (T, error) {
	var out T
	err := r.store.View(ctx, func(doc *models.Document) error {
		row, err := r.find(doc, id)
		if err != nil {
			return err
		}
		out = detach(*row)
		return nil
	})
	return out, err
}

// SoftDelete stamps deleted_at on the live row with id.
func (r *baseRepository[T, P]) SoftDelete(ctx context.Context, id string) error {
	err := r.store.Mutate(ctx, func(doc *models.Document) error {
		row, err := r.find(doc, id)
		if err != nil {
			return err
		}
		P(row).MarkDeleted(r.store.Now())
		return nil
	})
	return r.finish(ctx, err, models.ActionDelete, id)
}

// list returns copies of every live, visible row accepted by keep.
func (r *baseRepository[T, P]) list(ctx context.Context, keep func(doc *models.Document, row *T) bool) ([]T, error) {
	out := []T{}
	err := r.store.View(ctx, func(doc *models.Document) error {
		rows := *r.rows(doc)
		for i := range rows {
			if P(&rows[i]).IsDeleted() {
				continue
			}
			if r.visible != nil && !r.visible(doc, &rows[i]) {
				continue
			}
			if keep == nil || keep(doc, &rows[i]) {
				out = append(out, detach(rows[i]))
			}
		}
		return nil
	})
	return out, err
}

// finish records an audit entry once a mutation has been accepted and
// persisted, and passes err through otherwise.
func (r *baseRepository[T, P]) finish(ctx context.Context, err error, action, id string) error {
	if err != nil {
		return err
	}
	r.audit.Record(ctx, action, r.kind, id)
	return nil
}

type cloner[T any] interface {
	Clone() T
}

// detach copies a row so callers cannot reach into the snapshot.
func detach[T any](row T) T {
	if c, ok := any(row).(cloner[T]); ok {
		return c.Clone()
	}
	return row
}
