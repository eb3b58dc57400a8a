package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr        string
	BaseURL           string
	StreamSecret      string
	StreamTTL         time.Duration
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKey       string
	S3SecretKey       string
	RedisURL          string
	AnalyticsCacheTTL time.Duration
	ViewLogRetention  time.Duration
	AuthRateLimit     int
	AuthRateWindow    time.Duration
	UploadRateLimit   int
	UploadRateWindow  time.Duration
	ViewRateLimit     int
	ViewRateWindow    time.Duration
	PostgresUser      string
	PostgresPassword  string
	PostgresHost      string
	PostgresPort      string
	PostgresDatabase  string
	PostgresSSLMode   string
}

func Load() *Config {
	cfg := &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8000"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8000"),
		StreamSecret:      mustGetEnv("STREAM_SECRET"),
		StreamTTL:         getEnvDuration("STREAM_TTL", 10*time.Minute),
		JWTSecret:         mustGetEnv("JWT_SECRET"),
		AccessTokenTTL:    getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:   getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		S3Bucket:          getEnv("S3_BUCKET", "media-vault"),
		S3Region:          getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKey:       mustGetEnv("AWS_ACCESS_KEY_ID"),
		S3SecretKey:       mustGetEnv("AWS_SECRET_ACCESS_KEY"),
		RedisURL:          getEnv("REDIS_URL", ""),
		AnalyticsCacheTTL: getEnvDuration("ANALYTICS_CACHE_TTL", 5*time.Minute),
		ViewLogRetention:  getEnvDuration("VIEW_LOG_RETENTION", 90*24*time.Hour),
		AuthRateLimit:     getEnvInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow:    getEnvDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		UploadRateLimit:   getEnvInt("UPLOAD_RATE_LIMIT", 10),
		UploadRateWindow:  getEnvDuration("UPLOAD_RATE_WINDOW", time.Hour),
		ViewRateLimit:     getEnvInt("VIEW_RATE_LIMIT", 50),
		ViewRateWindow:    getEnvDuration("VIEW_RATE_WINDOW", 15*time.Minute),
		PostgresUser:      getEnv("POSTGRES_USER", "media"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnv("POSTGRES_PORT", "5432"),
		PostgresDatabase:  getEnv("POSTGRES_DATABASE", "media_vault"),
		PostgresSSLMode:   getEnv("POSTGRES_SSL_MODE", "disable"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic("Missing required environment variable: " + key)
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
