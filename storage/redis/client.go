package redis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"SevenDay/config"
)

var (
	client *redis.Client
	once   sync.Once
	err    error
)

func Init() error {
	once.Do(func() {
		cfg := config.Cfg

		client = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			MinIdleConns: 5,
			MaxRetries:   3,
		})

		if cfg.OTelEnabled {
			client.AddHook(newTracingHook(cfg.ServiceName, cfg.RedisDB))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err = client.Ping(ctx).Err()
	})

	return err
}

func Client() *redis.Client {
	if client == nil {
		panic("Redis client not init")
	}
	return client
}

func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Key 拼接带全局前缀的 key，空段会被跳过
func Key(parts ...string) string {
	prefix := config.Cfg.RedisPrefix
	if prefix == "" {
		prefix = "sday"
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for _, part := range parts {
		if part == "" {
			continue
		}
		sb.WriteString(":")
		sb.WriteString(part)
	}
	return sb.String()
}
