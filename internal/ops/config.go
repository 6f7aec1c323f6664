package ops

import (
	"encoding/json"
	"os"
	"time"

	"main/internal/errors"
	"main/pkg/conn"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	Queue    QueueConfig    `json:"queue"`
	Worker   WorkerConfig   `json:"worker"`
}

// PostgresConfig describes the transaction database connection.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// RedisConfig describes the queue backend connection.
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// QueueConfig names the work queue and bounds the task status cache.
type QueueConfig struct {
	Name             string `json:"name"`
	StatusTTLSeconds int    `json:"statusTtlSeconds"`
}

// WorkerConfig tunes the execution loop.
type WorkerConfig struct {
	DequeueTimeoutMS int `json:"dequeueTimeoutMs"`
	IdleDelayMS      int `json:"idleDelayMs"`
	ErrorDelayMS     int `json:"errorDelayMs"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Postgres conn.PostgresOption
	Redis    conn.RedisOption
	Queue    QueueSpec
	Worker   WorkerSpec
}

// QueueSpec is the resolved queue definition.
type QueueSpec struct {
	Name      string
	StatusTTL time.Duration
}

// WorkerSpec is the resolved worker loop tuning.
type WorkerSpec struct {
	DequeueTimeout time.Duration
	IdleDelay      time.Duration
	ErrorDelay     time.Duration
}

// Load reads a JSON config file and resolves defaults.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config")
	}
	return Resolve(cfg)
}

// Resolve validates a parsed config and fills defaults.
func Resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Postgres.Host == "" {
		return Loaded{}, errors.New("config: postgres host is required")
	}
	if cfg.Postgres.Database == "" {
		return Loaded{}, errors.New("config: postgres database is required")
	}
	if cfg.Redis.Host == "" {
		return Loaded{}, errors.New("config: redis host is required")
	}

	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Queue.Name == "" {
		cfg.Queue.Name = "gold_trading_queue"
	}
	if cfg.Queue.StatusTTLSeconds <= 0 {
		cfg.Queue.StatusTTLSeconds = 3600
	}
	if cfg.Worker.DequeueTimeoutMS <= 0 {
		cfg.Worker.DequeueTimeoutMS = 1000
	}
	if cfg.Worker.IdleDelayMS <= 0 {
		cfg.Worker.IdleDelayMS = 100
	}
	if cfg.Worker.ErrorDelayMS <= 0 {
		cfg.Worker.ErrorDelayMS = 1000
	}

	return Loaded{
		Postgres: conn.PostgresOption{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		},
		Redis: conn.RedisOption{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Queue: QueueSpec{
			Name:      cfg.Queue.Name,
			StatusTTL: time.Duration(cfg.Queue.StatusTTLSeconds) * time.Second,
		},
		Worker: WorkerSpec{
			DequeueTimeout: time.Duration(cfg.Worker.DequeueTimeoutMS) * time.Millisecond,
			IdleDelay:      time.Duration(cfg.Worker.IdleDelayMS) * time.Millisecond,
			ErrorDelay:     time.Duration(cfg.Worker.ErrorDelayMS) * time.Millisecond,
		},
	}, nil
}
