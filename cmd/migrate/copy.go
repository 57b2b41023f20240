package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/brandlink/engine/internal/models"
	"github.com/brandlink/engine/internal/storage"
)

var (
	errNoSource     = errors.New("source holds no document")
	errTargetExists = errors.New("target already holds a document, use -force to overwrite")
)

// copyDocument saves the source document into dst and reads it back. It
// returns the number of rows copied.
func copyDocument(ctx context.Context, src, dst storage.Backend, force bool) (int, error) {
	doc, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load source: %w", err)
	}
	if doc == nil {
		return 0, errNoSource
	}
	// Loading the target first also lets versioned backends learn the row
	// version they overwrite.
	existing, err := dst.Load(ctx)
	if err != nil && !errors.Is(err, storage.ErrCorrupt) {
		return 0, fmt.Errorf("inspect target: %w", err)
	}
	if existing != nil && !force {
		return 0, errTargetExists
	}
	if err := dst.Save(ctx, doc); err != nil {
		return 0, fmt.Errorf("save target: %w", err)
	}
	back, err := dst.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("verify target: %w", err)
	}
	if got, want := rowCount(back), rowCount(doc); got != want {
		return 0, fmt.Errorf("verify target: %d rows stored, %d expected", got, want)
	}
	return rowCount(doc), nil
}

func rowCount(doc *models.Document) int {
	if doc == nil {
		return 0
	}
	return len(doc.Users) + len(doc.Campaigns) + len(doc.CampaignPlatforms) +
		len(doc.Collaborators) + len(doc.Conversations) + len(doc.Messages) +
		len(doc.Attachments) + len(doc.Ratings) + len(doc.AuditLog)
}
