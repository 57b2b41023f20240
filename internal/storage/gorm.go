package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/pkg/database"
	"github.com/brandlink/engine/pkg/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBackend stores the document as one SnapshotRecord row in PostgreSQL or
// MySQL.
//
// Saves are guarded by the row version: a save only applies on top of the
// version this backend last loaded or wrote, and fails with ErrStale when
// another writer got there first.
type GormBackend struct {
	db      *gorm.DB
	name    string
	driver  string
	version int64
}

// NewGormBackend migrates the snapshot table and returns a backend bound to
// the row called name.
func NewGormBackend(ctx context.Context, db *gorm.DB, name string) (*GormBackend, error) {
	if err := db.WithContext(ctx).AutoMigrate(&models.SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot table: %w", err)
	}
	return &GormBackend{db: db, name: name, driver: db.Dialector.Name()}, nil
}

func (b *GormBackend) Name() string { return b.driver }

func (b *GormBackend) Load(ctx context.Context) (*models.Document, error) {
	var rec models.SnapshotRecord
	err := b.db.WithContext(ctx).First(&rec, "name = ?", b.name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.version = 0
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	b.version = rec.Version

	// JSON columns normalize whitespace and key order, so the checksum is
	// compared against the re-encoded document rather than the raw column.
	doc, err := decode([]byte(rec.Body), "")
	if err != nil {
		return nil, err
	}
	canonical, err := encode(doc)
	if err != nil {
		return nil, err
	}
	if utils.ChecksumHex(canonical) != rec.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return doc, nil
}

func (b *GormBackend) Save(ctx context.Context, doc *models.Document) error {
	body, err := encode(doc)
	if err != nil {
		return err
	}
	next := b.version + 1
	rec := models.SnapshotRecord{
		Name:      b.name,
		Body:      datatypes.JSON(body),
		Checksum:  utils.ChecksumHex(body),
		Version:   next,
		UpdatedAt: time.Now().UTC(),
	}

	var res *gorm.DB
	if b.version == 0 {
		res = b.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	} else {
		res = b.db.WithContext(ctx).Model(&models.SnapshotRecord{}).
			Where("name = ? AND version = ?", b.name, b.version).
			Updates(map[string]any{
				"body":       rec.Body,
				"checksum":   rec.Checksum,
				"version":    next,
				"updated_at": rec.UpdatedAt,
			})
	}
	if res.Error != nil {
		return fmt.Errorf("save snapshot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: expected version %d of %s", ErrStale, b.version, b.name)
	}
	b.version = next
	return nil
}

// Quarantine renames the current row so a fresh document can take its place.
func (b *GormBackend) Quarantine(ctx context.Context) (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", b.name, time.Now().Unix())
	err := b.db.WithContext(ctx).Model(&models.SnapshotRecord{}).
		Where("name = ?", b.name).
		Update("name", target).Error
	if err != nil {
		return "", fmt.Errorf("quarantine snapshot: %w", err)
	}
	b.version = 0
	return target, nil
}

func (b *GormBackend) Close() error { return database.Close(b.db) }
