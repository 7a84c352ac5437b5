// Command chronolens-metadataworker runs the EXIF metadata derivation
// worker (spec §4.4): it consumes the "metadata" subject, parses EXIF
// from the original, and writes the extracted fields back to the
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
	"github.com/Chronolens/chronolens/pkg/metadataworker"
)

func main() {
	root := &cobra.Command{
		Use:          "chronolens-metadataworker",
		Short:        "Chronolens EXIF metadata derivation worker",
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

	worker := metadataworker.New(cat, blobs, log)
	log.Info("metadata worker starting", zap.Int("max_concurrent", metadataworker.MaxConcurrent))
	return worker.Run(ctx, msgBus)
}
