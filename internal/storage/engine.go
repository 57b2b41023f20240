package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brandlink/engine/internal/identity"
	"github.com/brandlink/engine/internal/models"
	appErr "github.com/brandlink/engine/pkg/errors"
	"github.com/brandlink/engine/pkg/logger"
	"go.uber.org/zap"
)

// Engine owns the canonical in-memory document. Every read and mutation runs
// under one mutex, so operations never interleave; every mutation is written
// to the backend before Mutate returns.
type Engine struct {
	mu      sync.Mutex
	backend Backend
	doc     *models.Document
	closed  bool

	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the identifier source.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// Open loads the stored document. A missing document, or one that cannot be
// decoded, is replaced by an empty document which is persisted immediately.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Engine, error) {
	e := &Engine{
		backend: backend,
		now:     time.Now,
		newID:   identity.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}

	log := logger.L().With(zap.String("backend", backend.Name()))
	doc, err := backend.Load(ctx)
	switch {
	case err == nil && doc != nil:
		e.doc = doc
		log.Info("document loaded",
			zap.Int("users", len(doc.Users)),
			zap.Int("campaigns", len(doc.Campaigns)),
			zap.Int("messages", len(doc.Messages)),
		)
		return e, nil
	case err == nil:
		log.Warn("no stored document, initializing an empty one")
	case errors.Is(err, ErrCorrupt):
		log.Error("stored document is corrupt, starting from an empty document", zap.Error(err))
		if q, ok := backend.(Quarantiner); ok {
			moved, qerr := q.Quarantine(ctx)
			if qerr != nil {
				log.Error("quarantine failed, corrupt document will be overwritten", zap.Error(qerr))
			} else {
				log.Warn("corrupt document moved aside", zap.String("to", moved))
			}
		}
	default:
		return nil, appErr.Persistence(err, "load document")
	}

	e.doc = models.NewDocument()
	if err := backend.Save(ctx, e.doc); err != nil {
		return nil, appErr.Persistence(err, "persist initial document")
	}
	return e, nil
}

// Now returns the current time in UTC.
func (e *Engine) Now() time.Time { return e.now().UTC() }

// NewID returns a fresh entity identifier.
func (e *Engine) NewID() string { return e.newID() }

// BackendName names the durable backend.
func (e *Engine) BackendName() string { return e.backend.Name() }

// View runs fn against the document. fn must not modify it nor retain
// references past its return.
func (e *Engine) View(ctx context.Context, fn func(doc *models.Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return appErr.New(appErr.CodeInternal, "store is closed")
	}
	return fn(e.doc)
}

// Mutate runs fn and then writes the whole document. If fn fails nothing is
// written and its error is returned unchanged; fn must validate before it
// changes anything. If the write fails the in-memory change stays applied and
// a persistence error is returned.
func (e *Engine) Mutate(ctx context.Context, fn func(doc *models.Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return appErr.New(appErr.CodeInternal, "store is closed")
	}
	if err := fn(e.doc); err != nil {
		return err
	}
	return e.persistLocked(ctx)
}

// Flush writes the current document, for instance after a failed persist.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return appErr.New(appErr.CodeInternal, "store is closed")
	}
	return e.persistLocked(ctx)
}

// Close flushes the document and releases the backend. Later calls fail.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	err := e.persistLocked(ctx)
	e.closed = true
	if cerr := e.backend.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Abandon releases the backend without writing the document, for when this
// process no longer owns it. Later calls fail.
func (e *Engine) Abandon() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.backend.Close()
}

func (e *Engine) persistLocked(ctx context.Context) error {
	// The mutation is already applied; the write must not be abandoned because
	// the caller went away.
	if err := e.backend.Save(context.WithoutCancel(ctx), e.doc); err != nil {
		logger.L().Error("persist failed, in-memory state is ahead of storage",
			zap.String("backend", e.backend.Name()),
			zap.Error(err),
		)
		return appErr.Persistence(err, "persist document")
	}
	return nil
}
