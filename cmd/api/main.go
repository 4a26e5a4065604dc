package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go-employee/internal/app"
	"go-employee/internal/bootstrap"
	"go-employee/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := bootstrap.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// build dependency + routes
	infra, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer infra.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bootstrap.RunHTTPServer(ctx, r, bootstrap.ServerConfig{
			Port:         cfg.Port,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}, bootstrap.NewStdoutAuditLogger())
	})
	if infra.Outbox != nil {
		g.Go(func() error {
			return app.RunOutboxWorker(ctx, infra.SQLDB, cfg.KafkaBroker, infra.Metrics)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("api stopped with error", zap.Error(err))
	}
}
