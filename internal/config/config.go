package config

import (
	"errors"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	KeyUUID    = "uuid"
	KeyLogger  = "logger"
	KeyMetrics = "metrics"
)

type Config struct {
	Service  Service
	Platform Platform
	Postgres Postgres
	Logger   Logger
	Metrics  Metrics
	Kafka    Kafka
	Realtime Realtime
	Redis    Redis
}

type Service struct {
	Name string `env:"SERVICE_NAME" env-default:"messenger-service"`
	Port string `env:"SERVICE_PORT" env-default:"8080"`
}

type Platform struct {
	Env string `env:"ENV" env-default:"dev"`
}

type Postgres struct {
	User     string `env:"MESSENGER_SERVICE_POSTGRES_USER"`
	Password string `env:"MESSENGER_SERVICE_POSTGRES_PASSWORD"`
	Database string `env:"MESSENGER_SERVICE_POSTGRES_DB"`
	Host     string `env:"MESSENGER_SERVICE_POSTGRES_HOST" env-default:"localhost"`
	Port     string `env:"MESSENGER_SERVICE_POSTGRES_PORT" env-default:"5432"`
}

type Logger struct {
	Host string `env:"LOGGER_SERVICE_HOST"`
	Port string `env:"LOGGER_SERVICE_PORT"`
}

type Metrics struct {
	Host string `env:"GRAFANA_HOST"`
	Port int    `env:"GRAFANA_PORT"`
}

type Kafka struct {
	Host      string `env:"KAFKA_HOST"`
	Port      string `env:"KAFKA_PORT"`
	UserTopic string `env:"USER_PROFILE_TOPIC" env-default:"user-profile-updates"`
}

type Realtime struct {
	JWTSecret       string        `env:"REALTIME_JWT_SECRET" env-required:"true"`
	TokenTTL        time.Duration `env:"REALTIME_TOKEN_TTL" env-default:"30m"`
	AllowedOrigins  []string      `env:"REALTIME_ALLOWED_ORIGINS" env-separator:","`
	RateLimitRPS    float64       `env:"REALTIME_RATE_LIMIT_RPS" env-default:"20"`
	RateLimitBurst  int           `env:"REALTIME_RATE_LIMIT_BURST" env-default:"40"`
	SendBuffer      int           `env:"REALTIME_SEND_BUFFER" env-default:"256"`
	StatusTTL       time.Duration `env:"REALTIME_STATUS_TTL" env-default:"24h"`
	PruneCron       string        `env:"REALTIME_PRUNE_CRON" env-default:"*/10 * * * *"`
	PersistWorkers  int           `env:"REALTIME_PERSIST_WORKERS" env-default:"4"`
	PersistQueue    int           `env:"REALTIME_PERSIST_QUEUE" env-default:"1024"`
	MaxContentRunes int           `env:"REALTIME_MAX_CONTENT" env-default:"2000"`
	PingPeriod      time.Duration `env:"REALTIME_PING_PERIOD" env-default:"54s"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to read env variables: %s", err)
	}

	return cfg
}

func Load() (*Config, error) {
	// .env is optional, real deployments pass the environment directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	// env-required only rejects a missing variable, not an empty one
	if cfg.Realtime.JWTSecret == "" {
		return nil, errors.New("REALTIME_JWT_SECRET must not be empty")
	}

	return cfg, nil
}
