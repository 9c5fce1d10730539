package main

import (
	"context"
	"log"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/server"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := server.NewLogger(cfg)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer app.Close(context.Background())

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
