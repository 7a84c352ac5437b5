// Command chronolens-api serves the spec §6 HTTP surface: registration,
// login/refresh, the upload ingress, and the sync/browse/faces/search
// read endpoints.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Chronolens/chronolens/pkg/api"
	"github.com/Chronolens/chronolens/pkg/authcore"
	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/bus"
	"github.com/Chronolens/chronolens/pkg/catalog"
	"github.com/Chronolens/chronolens/pkg/config"
	"github.com/Chronolens/chronolens/pkg/logging"
)

func main() {
	root := &cobra.Command{
		Use:           "chronolens-api",
		Short:         "Chronolens HTTP ingress and browse server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          run,
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

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

	signer := authcore.NewSigner(cfg.JWTSecret)
	srv := api.New(cat, blobs, msgBus, signer, log)

	httpServer := &http.Server{
		Addr:              cfg.ListenOn,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("listening", zap.String("addr", cfg.ListenOn))
	return httpServer.ListenAndServe()
}
