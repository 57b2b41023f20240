package models

import (
	"time"

	"gorm.io/datatypes"
)

// SnapshotRecord is the SQL row holding one serialized Document.
type SnapshotRecord struct {
	Name      string         `gorm:"primaryKey;type:varchar(128)"`
	Body      datatypes.JSON `gorm:"not null"`
	Checksum  string         `gorm:"type:char(64);not null"`
	Version   int64          `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName pins the table name used by every SQL backend.
func (SnapshotRecord) TableName() string { return "document_snapshots" }
