package app

import (
	"context"
	"database/sql"
	"time"

	"go-employee/internal/config"
	"go-employee/internal/employee"
	"go-employee/internal/messaging/kafka"
	"go-employee/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const connectRetries = 5

// Infra holds the connections the API process opened. Nil fields mean the
// corresponding backend is not configured.
type Infra struct {
	GormDB *gorm.DB
	SQLDB  *sql.DB
	Redis  *redis.Client
	Outbox kafka.OutboxRepository

	// Metrics is the registry served on /metrics.
	Metrics *prometheus.Registry
}

// Close releases every open connection.
func (i *Infra) Close() {
	log := zap.L().Named("app")
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			log.Warn("close redis failed", zap.Error(err))
		}
	}
	if i.GormDB != nil {
		if err := connection.DisconnectGORM(i.GormDB); err != nil {
			log.Warn("close database failed", zap.Error(err))
		}
	}
}

// BuildApp opens the configured backends, migrates the schema and registers
// every route on router.
func BuildApp(router *gin.Engine, cfg config.Config) (*Infra, error) {
	log := zap.L().Named("app")
	infra := &Infra{Metrics: newMetricsRegistry()}

	var repo employee.Repository
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		repo = employee.NewMemoryRepository()
		log.Info("using in-memory employee store")
	default:
		gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN, connectRetries)
		if err != nil {
			return nil, err
		}
		infra.GormDB = gormDB

		if err := employee.Migrate(gormDB); err != nil {
			infra.Close()
			return nil, err
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.SQLDB = sqlDB
		repo = employee.NewRepository(gormDB)
		log.Info("database connection established")

		if cfg.KafkaBroker != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := kafka.EnsureOutboxTable(ctx, sqlDB)
			cancel()
			if err != nil {
				infra.Close()
				return nil, err
			}
			infra.Outbox = kafka.NewOutboxRepository(sqlDB)
		}
	}

	if cfg.RedisAddr != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Redis = rdb
		log.Info("redis connection established")
	}

	var svc employee.Service
	if infra.Outbox != nil {
		svc = employee.NewServiceWithOutbox(infra.SQLDB, repo, infra.Outbox)
	} else {
		svc = employee.NewService(repo)
	}

	registerModules(router, cfg, svc, infra.Redis, infra.Metrics)
	return infra, nil
}
