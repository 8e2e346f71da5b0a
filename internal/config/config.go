package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	DatabaseURL         string
	JWTSecret           string
	AllowOrigins        []string
	LogstashTCPAddr     string
	LogLevel            string
	LogFormat           string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	ProfileCacheTTL     time.Duration
	BookmarkBackend     string
	QueryDebounce       time.Duration
	CatalogDefaultLimit int
	AllowedCategories   []string
	ModeratorRoles      []string
	ForbidSelfApproval  bool
	EnableSubmissions   bool
	AutoMigrate         bool
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	redisDB := 0
	if v, err := strconv.Atoi(getenv("REDIS_DB", "0")); err == nil && v >= 0 {
		redisDB = v
	}

	defaultLimit := 20
	if v, err := strconv.Atoi(getenv("CATALOG_DEFAULT_LIMIT", "20")); err == nil && v > 0 {
		defaultLimit = v
	}

	var allowedCategories []string
	if raw := getenv("ALLOWED_CATEGORIES", ""); strings.TrimSpace(raw) != "" {
		allowedCategories = splitAndTrim(raw)
	}

	backend := strings.ToLower(getenv("BOOKMARK_BACKEND", "postgres"))
	if backend != "redis" {
		backend = "postgres"
	}

	return Config{
		Port:                getenv("PORT", "8080"),
		DatabaseURL:         must("DATABASE_URL"),
		JWTSecret:           must("JWT_SECRET"),
		AllowOrigins:        splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr:     getenv("LOGSTASH_TCP_ADDR", ""),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		LogFormat:           getenv("LOG_FORMAT", "json"),
		RedisAddr:           getenv("REDIS_ADDR", ""),
		RedisPassword:       getenv("REDIS_PASSWORD", ""),
		RedisDB:             redisDB,
		ProfileCacheTTL:     duration("PROFILE_CACHE_TTL", 5*time.Minute),
		BookmarkBackend:     backend,
		QueryDebounce:       duration("QUERY_DEBOUNCE", 250*time.Millisecond),
		CatalogDefaultLimit: defaultLimit,
		AllowedCategories:   allowedCategories,
		ModeratorRoles:      splitAndTrim(getenv("MODERATOR_ROLES", "admin,moderator")),
		ForbidSelfApproval:  getenv("FORBID_SELF_APPROVAL", "true") == "true",
		EnableSubmissions:   getenv("ENABLE_SUBMISSIONS", "true") == "true",
		AutoMigrate:         getenv("AUTO_MIGRATE", "false") == "true",
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func duration(k string, d time.Duration) time.Duration {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Printf("Warning: invalid %s %q, using %s", k, raw, d)
		return d
	}
	return v
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
