// Command cleanup permanently removes analyses that stayed in the trash
// longer than the configured retention, together with their images.
// It is meant to run periodically, e.g. from cron.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/server"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server.InitSignalHandler(cancel)

	cfg := config.LoadConfig()
	logger := server.NewLogger(cfg).With("module", "cleanup")

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer app.Close(context.Background())

	n, rep, err := app.Analyses().PurgeExpired(ctx, time.Now(), cfg.TrashRetention)
	if err != nil {
		logger.Error(ctx, "cleanup failed", "error", err)
		os.Exit(1)
	}

	logger.Info(ctx, "cleanup finished",
		"records", n,
		"retention", cfg.TrashRetention.String(),
		"images_deleted", rep.Deleted,
		"images_missing", rep.Missing,
		"images_failed", rep.Failed,
	)
}
