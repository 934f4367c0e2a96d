package app

import (
	"strings"
	"time"

	"github.com/MAximeXX/AIEval/internal/platform/envutil"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/platform/openai"
)

const defaultJWTSecret = "change-me"

type Config struct {
	Port           string
	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DBDriver   string
	SQLitePath string

	WorkerConcurrency int
	CORSOrigins       []string

	RealtimeBuffer    int
	RealtimeHeartbeat time.Duration

	LLM openai.Config
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:              envutil.String("PORT", "8000"),
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:    envutil.Duration("ACCESS_TOKEN_TTL", 2*time.Hour),
		DBDriver:          strings.ToLower(envutil.String("DB_DRIVER", "postgres")),
		SQLitePath:        envutil.String("SQLITE_PATH", "butterfly.db"),
		WorkerConcurrency: envutil.Int("WORKER_CONCURRENCY", 2),
		CORSOrigins:       envutil.List("CORS_ORIGINS"),
		RealtimeBuffer:    envutil.Int("REALTIME_BUFFER", 16),
		RealtimeHeartbeat: envutil.Duration("REALTIME_HEARTBEAT", 15*time.Second),
		LLM: openai.Config{
			BaseURL:     envutil.String("LLM_API_BASE", ""),
			APIKey:      envutil.String("LLM_API_KEY", ""),
			Model:       envutil.String("LLM_MODEL", "qwen-max"),
			Timeout:     envutil.Duration("LLM_TIMEOUT_SECONDS", 60*time.Second),
			MaxRetries:  envutil.Int("LLM_MAX_RETRIES", 2),
			Temperature: envutil.Float("LLM_TEMPERATURE", 0.7),
		},
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return cfg
}
