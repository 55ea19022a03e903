package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vikneshkrishnan/ai-policy-helper/internal/config"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/server"
	"github.com/vikneshkrishnan/ai-policy-helper/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	engine := service.NewEngine(cfg, logger)
	srv := server.New(engine, cfg, logger)

	logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("data_dir", cfg.DataDir))
	if err := srv.Router().Run(cfg.Server.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
