package main

import (
	"go-hrdesk/internal/app"
	"go-hrdesk/internal/config"
	"go-hrdesk/internal/shared/apperror"
	"go-hrdesk/internal/shared/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, restore := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	defer restore()

	apperror.Init()

	if err := app.RunWorker(cfg); err != nil {
		log.Fatal("run worker failed", zap.Error(err))
	}
}
