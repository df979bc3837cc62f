package main

import (
	"flag"
	"log"

	"go-hrpayroll/internal/app"
	"go-hrpayroll/internal/config"
	"go-hrpayroll/internal/shared/apperror"
	"go-hrpayroll/internal/shared/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	l, sync, err := logger.Install(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer sync()

	apperror.Init()

	if err := app.RunWorker(cfg, l); err != nil {
		l.Fatal("run worker failed", zap.Error(err))
	}
}
