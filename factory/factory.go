package factory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/go-redis/redis"
	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	"eventspot/config"
	"eventspot/logger"
)

// Factory hands out process-wide connections, creating each on first use.
type Factory interface {
	DB(ctx context.Context) *sql.DB
	Redis(ctx context.Context) *redis.Client
	Close()
}

type factory struct {
	dbOnce    sync.Once
	redisOnce sync.Once

	db    *sql.DB
	redis *redis.Client
}

func NewFactory() Factory {
	return &factory{}
}

// DB returns the MySQL pool, or nil when no DSN is configured.
func (f *factory) DB(ctx context.Context) *sql.DB {
	f.dbOnce.Do(func() {
		dsn := viper.GetString(config.DBURL)
		if dsn == "" {
			logger.Infof(ctx, "factory: no database configured")
			return
		}
		sqlDB, err := sql.Open("mysql", dsn)
		if err != nil {
			logger.Fatalf(ctx, "Error creating connection pool: %+v", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			logger.Errorf(ctx, "factory: database not reachable yet: %+v", err)
		}
		f.db = sqlDB
	})
	return f.db
}

// Redis returns the shared client, or nil when no address is configured.
func (f *factory) Redis(ctx context.Context) *redis.Client {
	f.redisOnce.Do(func() {
		addr := viper.GetString(config.RedisAddress)
		if addr == "" {
			logger.Infof(ctx, "factory: no redis configured")
			return
		}
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString(config.RedisPassword),
			DB:       viper.GetInt(config.RedisDB),
		})
		if err := client.Ping().Err(); err != nil {
			logger.Errorf(ctx, "factory: redis not reachable yet: %+v", err)
		}
		f.redis = client
	})
	return f.redis
}

func (f *factory) Close() {
	if f.db != nil {
		f.db.Close()
	}
	if f.redis != nil {
		f.redis.Close()
	}
}
