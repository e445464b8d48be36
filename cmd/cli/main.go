package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/ewaste/internal/buildinfo"
	"github.com/dmitrijs2005/ewaste/internal/client/cli"
	"github.com/dmitrijs2005/ewaste/internal/client/client"
	"github.com/dmitrijs2005/ewaste/internal/client/config"
	"github.com/dmitrijs2005/ewaste/internal/client/services"
	"github.com/dmitrijs2005/ewaste/internal/client/session"
	"github.com/dmitrijs2005/ewaste/internal/client/storage"
	"github.com/dmitrijs2005/ewaste/internal/client/uploads"
	"github.com/dmitrijs2005/ewaste/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	db, err := storage.Open(ctx, cfg.StorageDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	store := session.NewStore(db, cfg.KeyPrefix, logger)
	notifier := cli.NewConsoleNotifier(os.Stdout)

	api := client.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout, logger)
	api.SetTokenSource(store.Token)

	auth := services.NewAuthController(ctx, api, store, notifier, cfg.OTPResendCooldown, logger)
	api.OnUnauthorized(auth.HandleUnauthorized)

	var uploader services.ImageUploader
	s3, err := uploads.NewS3Uploader(ctx, cfg.S3, logger)
	if err != nil {
		return err
	}
	if s3.Enabled() {
		uploader = s3
	}

	market := services.NewMarketplaceService(api, auth, uploader, notifier, logger)

	app := cli.NewApp(auth, market, os.Stdin, os.Stdout, logger)
	app.Run(ctx)
	return nil
}
