package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr  string
	UploadDir string
	OutputDir string

	TrustmarkBin       string
	TrustmarkModelsDir string
	TrustmarkVariant   string
	TrustmarkSchema    string

	C2PAToolBin string
	KeysDir     string
	TAURL       string

	MaxUploadBytes int64
	MaxPixels      int64

	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int
	RateLimitFailClosed    bool

	PolicyBundlePath string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		UploadDir:              envDefault("UPLOAD_DIR", "uploads"),
		OutputDir:              envDefault("OUTPUT_DIR", "outputs"),
		TrustmarkBin:           os.Getenv("TRUSTMARK_BIN"),
		TrustmarkModelsDir:     envDefault("TRUSTMARK_MODELS_DIR", "models"),
		TrustmarkVariant:       envDefault("TRUSTMARK_VARIANT", "Q"),
		TrustmarkSchema:        envDefault("TRUSTMARK_SCHEMA", "BCH_4"),
		C2PAToolBin:            os.Getenv("C2PATOOL_BIN"),
		KeysDir:                envDefault("KEYS_DIR", "keys"),
		TAURL:                  envDefault("TA_URL", "http://timestamp.digicert.com"),
		MaxUploadBytes:         envInt64Default("MAX_UPLOAD_BYTES", 200<<20),
		MaxPixels:              envInt64Default("MAX_PIXELS", 4096*2160),
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RateLimitFailClosed:    envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		PolicyBundlePath:       os.Getenv("POLICY_BUNDLE_PATH"),
	}
}

func (c Config) RateLimitWindow() time.Duration {
	if c.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
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
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envInt64Default(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
