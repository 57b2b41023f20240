// Package storage owns the in-memory document and its durable copy.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/pkg/utils"
)

// ErrCorrupt marks a stored document that exists but cannot be decoded.
var ErrCorrupt = errors.New("stored document is corrupt")

// ErrStale marks a save rejected because another writer changed the stored
// document since it was last read.
var ErrStale = errors.New("stored document was changed by another writer")

// Backend persists whole documents. Load returns (nil, nil) when nothing has
// been stored yet.
type Backend interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
	Close() error
	Name() string
}

// Quarantiner is implemented by backends that can move a corrupt document
// aside before it is replaced by an empty one.
type Quarantiner interface {
	Quarantine(ctx context.Context) (string, error)
}

func encode(doc *models.Document) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

// decode parses body and, when checksum is non-empty, verifies it first.
func decode(body []byte, checksum string) (*models.Document, error) {
	if checksum != "" && utils.ChecksumHex(body) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	var doc models.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	doc.Normalize()
	return &doc, nil
}
