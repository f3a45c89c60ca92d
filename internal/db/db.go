package db

import (
	"context"
	"fmt"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/router/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// InitDb initializes the database connection and returns a pool.
func InitDb(cfg config.Config) (*pgxpool.Pool, error) {
	dbUser := cfg.PostgresUser
	dbPassword := cfg.PostgresPass
	dbHost := cfg.PostgresHost
	dbPort := cfg.PostgresPort
	dbName := cfg.PostgresDB

	if dbUser == "" || dbPassword == "" || dbHost == "" || dbPort == "" || dbName == "" {
		return nil, fmt.Errorf("one or more database connection environment variables are missing")
	}

	databaseUrl := cfg.PostgresConn

	var err error
	dbPool, err := pgxpool.New(context.Background(), databaseUrl)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	return dbPool, nil
}

// InitRedis initializes the redis client used as the access-level
// cache. Returns nil when no address is configured; the cache is
// optional and the service runs without it.
func InitRedis(cfg config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to redis: %v", err)
	}
	return client, nil
}
