package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	retryDelay = 5 * time.Second
	sleep      = time.Sleep

	openGORM = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{
			SkipDefaultTransaction: true,
			DisableAutomaticPing:   true,
			Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
		})
	}
)

// retry runs attempt up to maxRetries times, waiting retryDelay between
// failures. It returns the last error.
func retry(maxRetries int, attempt func(i int) error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	for i := 1; i <= maxRetries; i++ {
		if err = attempt(i); err == nil {
			return nil
		}
		if i < maxRetries {
			sleep(retryDelay)
		}
	}
	return err
}

// ConnectGORMWithRetry opens the store identified by dsn and pings it,
// retrying up to maxRetries times before giving up. A pool whose ping fails
// is closed before the next attempt.
func ConnectGORMWithRetry(dsn string, maxRetries int) (*gorm.DB, error) {
	log := zap.L().Named("connection.gorm")
	var db *gorm.DB

	err := retry(maxRetries, func(i int) error {
		conn, err := openGORM(dsn)
		if err != nil {
			log.Warn("gorm open failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			return err
		}

		sqlDB, err := conn.DB()
		if err != nil {
			log.Warn("get sql.DB failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			return err
		}

		if err := sqlDB.Ping(); err != nil {
			_ = sqlDB.Close()
			log.Warn("db ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			return err
		}

		// Pool config
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)

		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, err)
	}

	log.Info("gorm connected to database")
	return db, nil
}

// DisconnectGORM closes the pool behind db.
func DisconnectGORM(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	log := zap.L().Named("connection.redis")
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	err := retry(maxRetries, func(i int) error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect redis at %s: %w", addr, err)
	}

	log.Info("connected to redis", zap.String("addr", addr))
	return rdb, nil
}

// ConnectKafkaWithRetry dials the broker until it answers, then returns a
// writer that routes by message topic.
func ConnectKafkaWithRetry(broker string, maxRetries int) (*kafkago.Writer, error) {
	log := zap.L().Named("connection.kafka")

	err := retry(maxRetries, func(i int) error {
		conn, err := kafkago.Dial("tcp", broker)
		if err != nil {
			log.Warn("kafka dial failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			return err
		}
		_ = conn.Close()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("kafka connection failed after %d retries: %w", maxRetries, err)
	}

	log.Info("connected to kafka", zap.String("broker", broker))
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(broker),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}, nil
}
