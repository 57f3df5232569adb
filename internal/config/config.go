package config

import (
	"os"
	"strconv"

	"custodia/internal/usecase"
)

// Backend names accepted by STATE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	StateBackend string

	PostgresDSN string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	Principal        string
	AccessPolicyPath string

	QueryMaxResults int
	PageLimit       int
	SubmitRetries   int
}

func FromEnv() Config {
	return Config{
		StateBackend:     envDefault("STATE_BACKEND", BackendMemory),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          envIntDefault("REDIS_DB", 0),
		RedisKeyPrefix:   envDefault("REDIS_KEY_PREFIX", "custodia"),
		Principal:        os.Getenv("CUSTODIA_PRINCIPAL"),
		AccessPolicyPath: os.Getenv("ACCESS_POLICY_PATH"),
		QueryMaxResults:  envIntDefault("QUERY_MAX_RESULTS", 10000),
		PageLimit:        envIntDefault("PAGE_LIMIT", usecase.DefaultPageLimit),
		SubmitRetries:    envIntDefault("SUBMIT_RETRIES", 3),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}
