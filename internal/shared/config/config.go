package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port                string
	CORSAllowOrigin     []string
	Env                 string
	LogLevel            string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	VisionModel         string
	VisionPromptVersion string
	VisionTimeout       time.Duration
	VisionMaxAttempts   int
	VisionImageDetail   string
	VisionMaxTokens     int
	DatabaseURL         string
	DBMaxOpenConns      int
	DBMaxIdleConns      int
	DBConnMaxLifetime   time.Duration
	DBPingTimeout       time.Duration
	SeedFile            string
	RedisURL            string
	CacheTTL            time.Duration
	ArchiveImages       bool
	ObjectStoreType     string
	LocalStoreDir       string
	AWSRegion           string
	S3Bucket            string
	S3Prefix            string
	SSEKMSKeyID         string
	AnalyzeRate         float64
	AnalyzeBurst        int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is not set in production; shop registry will not survive restarts")
	}

	return Config{
		Port:                getEnv("PORT", "8080"),
		CORSAllowOrigin:     splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		Env:                 env,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		OpenAIAPIKey:        strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		VisionModel:         getEnv("VISION_MODEL", "gpt-4o-mini"),
		VisionPromptVersion: getEnv("VISION_PROMPT_VERSION", "v1"),
		VisionTimeout:       getDuration("VISION_TIMEOUT", 30*time.Second),
		VisionMaxAttempts:   getInt("VISION_MAX_ATTEMPTS", 3),
		VisionImageDetail:   getEnv("VISION_IMAGE_DETAIL", "high"),
		VisionMaxTokens:     getInt("VISION_MAX_TOKENS", 800),
		DatabaseURL:         dbURL,
		DBMaxOpenConns:      getInt("DB_MAX_OPEN_CONNS", 0),
		DBMaxIdleConns:      getInt("DB_MAX_IDLE_CONNS", 0),
		DBConnMaxLifetime:   getDuration("DB_CONN_MAX_LIFETIME", 0),
		DBPingTimeout:       getDuration("DB_PING_TIMEOUT", 0),
		SeedFile:            getEnv("SEED_FILE", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		CacheTTL:            getDuration("CACHE_TTL", 24*time.Hour),
		ArchiveImages:       getBool("ARCHIVE_IMAGES", false),
		ObjectStoreType:     normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:       getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:           getEnv("AWS_REGION", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Prefix:            getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:         getEnv("SSE_KMS_KEY_ID", ""),
		AnalyzeRate:         getFloat("ANALYZE_RATE", 1),
		AnalyzeBurst:        getInt("ANALYZE_BURST", 5),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		log.Printf("config %s invalid number %q, using %v", key, raw, def)
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	// Bare integers are seconds.
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// IsDevLike reports whether env permits in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
