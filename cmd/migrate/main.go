package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/brandlink/engine/internal/storage"
	"github.com/brandlink/engine/pkg/config"
	"github.com/brandlink/engine/pkg/logger"
)

// migrate copies the stored document from a local source into the backend
// selected by the configuration, creating the snapshot table on the way.
func main() {
	from := flag.String("from", config.BackendFile, "source backend: file or sqlite")
	path := flag.String("path", "", "source file path (defaults to DATA_FILE)")
	force := flag.Bool("force", false, "overwrite a document already stored in the target")
	flag.Parse()

	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	src, err := openSource(ctx, *from, *path, cfg)
	if err != nil {
		log.Fatal("failed to open source", zap.Error(err))
	}
	defer src.Close()

	dst, err := storage.OpenBackend(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open target", zap.Error(err))
	}
	defer dst.Close()

	n, err := copyDocument(ctx, src, dst, *force)
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("document copied",
		zap.String("from", src.Name()),
		zap.String("to", dst.Name()),
		zap.Int("rows", n),
	)
	fmt.Fprintln(os.Stdout, "migration completed")
}

func openSource(ctx context.Context, kind, path string, cfg *config.Config) (storage.Backend, error) {
	if path == "" {
		path = cfg.DataFile
	}
	switch kind {
	case config.BackendFile:
		return storage.NewFileBackend(path), nil
	case config.BackendSQLite:
		return storage.NewSQLiteBackend(ctx, path, cfg.SnapshotName)
	default:
		return nil, fmt.Errorf("unsupported source backend %q", kind)
	}
}
