package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AliAamir1/budsapp/internal/buildinfo"
	"github.com/AliAamir1/budsapp/internal/cli"
	"github.com/AliAamir1/budsapp/internal/config"
	"github.com/AliAamir1/budsapp/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
