package shared

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	GuideBase      string
	MetricsAddr    string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	SessionKey     string
	SessionChannel string
	Workers        int
	ClientRPS      int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		GuideBase:      env("GUIDE_BASE_URL", "http://localhost:5000"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		SessionKey:     env("SESSION_KEY", "guide:session:token"),
		SessionChannel: env("SESSION_CHANNEL", "guide:session:changed"),
		Workers:        atoi("IMPORT_WORKERS", 4),
		ClientRPS:      atoi("CLIENT_RPS", 5),
	}
	if os.Getenv("GUIDE_BASE_URL") == "" {
		log.Warn().Str("default", c.GuideBase).Msg("GUIDE_BASE_URL not set")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
