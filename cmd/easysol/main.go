// ====================================
// File: cmd/easysol/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/jong319/easy-solana-go/internal/cli"
	"github.com/jong319/easy-solana-go/internal/config"
	"github.com/jong319/easy-solana-go/internal/utils/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *debug {
		cfg.DebugLogging = true
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	appLogger, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	app := cli.NewApp(cfg, appLogger)
	if err := app.Run(context.Background(), flag.Args()); err != nil {
		appLogger.Error("Command failed", zap.Error(err))
		_ = appLogger.Sync()
		os.Exit(1)
	}
}
