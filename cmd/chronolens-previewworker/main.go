// Command chronolens-previewworker runs the preview derivation worker
// (spec §4.3): it consumes the "previews" subject, decodes and resizes
// originals, and writes the derived preview back to the Blob store and
// Catalog.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/bus"
	"github.com/Chronolens/chronolens/pkg/catalog"
	"github.com/Chronolens/chronolens/pkg/config"
	"github.com/Chronolens/chronolens/pkg/logging"
	"github.com/Chronolens/chronolens/pkg/previewworker"
)

func main() {
	root := &cobra.Command{
		Use:          "chronolens-previewworker",
		Short:        "Chronolens preview derivation worker",
		SilenceUsage: true,
		RunE:         run,
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cat, err := catalog.NewPostgres(ctx, catalog.PostgresConfig{
		DSN:      cfg.DatabaseDSN(),
		MinConns: 5,
		MaxConns: 100,
	})
	if err != nil {
		log.Error("failed connecting to catalog", zap.Error(err))
		return err
	}

	blobs, err := blobstore.NewS3(ctx, blobstore.Config{
		Endpoint:  cfg.ObjectStorageEndpoint,
		Bucket:    cfg.ObjectStorageBucket,
		Region:    cfg.ObjectStorageRegion,
		AccessKey: cfg.ObjectStorageAccessKey,
		SecretKey: cfg.ObjectStorageSecretKey,
	})
	if err != nil {
		log.Error("failed connecting to blob store", zap.Error(err))
		return err
	}

	msgBus, err := bus.NewNATS(ctx, cfg.NATSEndpoint)
	if err != nil {
		log.Error("failed connecting to message bus", zap.Error(err))
		return err
	}
	defer msgBus.Close()

	worker := previewworker.New(cat, blobs, log)
	log.Info("preview worker starting", zap.Int("max_concurrent", previewworker.MaxConcurrent))
	return worker.Run(ctx, msgBus)
}
