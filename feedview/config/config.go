package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type CoreConfig struct {
	ListenAddr      string `env:"LISTEN_ADDR, default=0.0.0.0:3000"`
	DbPath          string `env:"DB_PATH, default=feedview.db"`
	BackendHost     string `env:"BACKEND_HOST, default=https://api.quadrangle.org"`
	CollectionsFile string `env:"COLLECTIONS_FILE"`

	// RefreshCron re-runs composition on a schedule so time-relative
	// views (upcoming cutoffs) move even when the backend is quiet.
	RefreshCron string `env:"REFRESH_CRON, default=*/5 * * * *"`
}

type StreamConfig struct {
	Endpoint          string        `env:"ENDPOINT, default=wss://stream.quadrangle.org/subscribe"`
	RetryInterval     time.Duration `env:"RETRY_INTERVAL, default=2s"`
	MaxRetryInterval  time.Duration `env:"MAX_RETRY_INTERVAL, default=2m"`
	ConnectionTimeout time.Duration `env:"CONNECTION_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	// Addr enables the shared redis cursor store when set; otherwise
	// cursors live in sqlite alongside the snapshot store.
	Addr     string `env:"ADDR"`
	Password string `env:"PASS"`
	DB       int    `env:"DB, default=0"`
}

type Config struct {
	Core   CoreConfig   `env:",prefix=QUAD_"`
	Stream StreamConfig `env:",prefix=QUAD_STREAM_"`
	Redis  RedisConfig  `env:",prefix=QUAD_REDIS_"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	err := envconfig.Process(ctx, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
