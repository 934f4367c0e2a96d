package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MAximeXX/AIEval/internal/jobs"
	"github.com/MAximeXX/AIEval/internal/platform/logger"
	"github.com/MAximeXX/AIEval/internal/platform/openai"
	"github.com/MAximeXX/AIEval/internal/realtime/bus"
)

// Clients are the optional outside collaborators. Every field may be nil:
// without redis the app runs single-process with no async queue, and without
// an LLM key evaluations use the built-in text.
type Clients struct {
	Bus   bus.Bus
	Queue jobs.Queue
	LLM   openai.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	redisCfg := bus.RedisConfigFromEnv()
	if strings.TrimSpace(redisCfg.Addr) != "" {
		b, err := bus.NewRedisBus(log, redisCfg)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis realtime bus: %w", err)
		}
		out.Bus = b

		rdb := goredis.NewClient(&goredis.Options{
			Addr:        redisCfg.Addr,
			Password:    redisCfg.Password,
			DB:          redisCfg.DB,
			DialTimeout: 5 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			out.Close()
			return Clients{}, fmt.Errorf("init redis queue: %w", err)
		}
		out.Queue = jobs.NewRedisQueue(log, rdb, jobs.QueueConfigFromEnv())
	} else {
		log.Warn("REDIS_ADDR not set; realtime stays in-process and async saves are disabled")
	}

	// LLM
	if strings.TrimSpace(cfg.LLM.APIKey) != "" {
		llm, err := openai.NewClient(log, cfg.LLM)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init llm client: %w", err)
		}
		out.LLM = llm
	} else {
		log.Warn("LLM_API_KEY not set; evaluations use the built-in text")
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Queue != nil {
		_ = c.Queue.Close()
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
