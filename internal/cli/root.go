// Package cli implements the artcatalog command tree.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vbonduro/artcatalog/internal/config"
	"github.com/vbonduro/artcatalog/internal/db"
	"github.com/vbonduro/artcatalog/internal/logging"
	"github.com/vbonduro/artcatalog/internal/photostore"
	"github.com/vbonduro/artcatalog/internal/photostore/local"
	s3store "github.com/vbonduro/artcatalog/internal/photostore/s3"
	"github.com/vbonduro/artcatalog/internal/service"
	"github.com/vbonduro/artcatalog/internal/store"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artcatalog",
		Short: "Inventory catalog for fine-art removals",
		Long: `artcatalog records client collections, the artworks, furniture and
containers in each collection, and up to five photos per object.

Configuration is read from the environment and from a .env file in the
working directory (DB_PATH, PHOTO_BACKEND, PHOTO_LOCAL_PATH, PHOTO_S3_*,
LOG_LEVEL, LOG_FORMAT, LOG_FILE).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCollectionCmd())
	cmd.AddCommand(newObjectCmd())
	cmd.AddCommand(newPhotoCmd())
	cmd.AddCommand(newSweepCmd())

	return cmd
}

// env is everything a command needs to talk to the catalog.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *service.CatalogService
}

// withService opens the catalog, runs fn, and closes it again. A database that
// cannot be opened or migrated aborts the command.
func withService(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeDB(database, logger)

	photoStg, err := newPhotoStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize photo store", "backend", cfg.PhotoBackend, "error", err)
		return err
	}

	svc := service.NewCatalogService(
		store.NewCollectionStore(database),
		store.NewItemStore(database),
		store.NewPhotoStore(database),
		photoStg,
		logger,
	)
	return fn(ctx, &env{cfg: cfg, logger: logger, svc: svc})
}

func closeDB(database *sql.DB, logger *slog.Logger) {
	if err := database.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

func newPhotoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case "s3":
		logger.Debug("using s3 photo store", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		st, err := s3store.New(ctx, s3store.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 photo store: %w", err)
		}
		return st, nil
	case "local", "":
		logger.Debug("using local photo store", "path", cfg.PhotoPath)
		return local.NewLocalPhotoStore(cfg.PhotoPath), nil
	default:
		return nil, fmt.Errorf("unknown PHOTO_BACKEND %q", cfg.PhotoBackend)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
