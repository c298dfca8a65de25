// README: Config loader with env defaults for HTTP, provider keys, and search tuning.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type SearchConfig struct {
	CacheTTL          time.Duration
	MaxOffers         int
	ReturnParallelism int
	IncludeAirlines   string
}

type Config struct {
	HTTP struct {
		Addr string
	}
	AI struct {
		GeminiKey string
	}
	Flights struct {
		APIKey  string
		BaseURL string
		Timeout time.Duration
	}
	Redis struct {
		// Addr is optional; when set the search cache is redis-backed
		// instead of in-process.
		Addr string
	}
	Search SearchConfig
}

// Load reads configuration from the environment (a .env file is honoured if
// present). Missing provider credentials are a startup error, not a per-call one.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("TAILWIND_HTTP_ADDR", ":8080")
	cfg.Flights.BaseURL = envOrDefault("TAILWIND_FLIGHTS_BASE_URL", "https://serpapi.com/search.json")
	cfg.Flights.Timeout = time.Duration(envOrDefaultInt("TAILWIND_FLIGHTS_TIMEOUT_SECONDS", 20)) * time.Second
	cfg.Redis.Addr = envOrDefault("TAILWIND_REDIS_ADDR", "")
	cfg.Search.CacheTTL = time.Duration(envOrDefaultInt("TAILWIND_SEARCH_CACHE_TTL_SECONDS", 3600)) * time.Second
	cfg.Search.MaxOffers = envOrDefaultInt("TAILWIND_SEARCH_MAX_OFFERS", 5)
	cfg.Search.ReturnParallelism = envOrDefaultInt("TAILWIND_RETURN_PARALLELISM", 3)
	cfg.Search.IncludeAirlines = envOrDefault("TAILWIND_INCLUDE_AIRLINES", "SKYTEAM")

	var err error
	if cfg.AI.GeminiKey, err = envOrError("GEMINI_API_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.Flights.APIKey, err = envOrError("SERPAPI_API_KEY"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrError(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("environment variable %s is required", key)
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
