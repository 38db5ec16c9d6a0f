// Package config loads the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	sharedconfig "github.com/praleedsuvarna/shared-libs/config"
)

// Config holds everything main needs to wire the service.
type Config struct {
	Port string

	// DBDriver selects the storage adapter: "mongo" or "sqlite".
	DBDriver   string
	MongoURI   string
	MongoDB    string
	SQLitePath string

	NATSURL string

	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	S3PathStyle       bool

	JWTSecret    string
	RAGTokenTTL  time.Duration
	ShareCodeTTL time.Duration
}

// Load reads the .env file (if present) and the process environment.
func Load() Config {
	sharedconfig.LoadEnv()

	return Config{
		Port: getEnv("PORT", "3000"),

		DBDriver:   getEnv("DB_DRIVER", "mongo"),
		MongoURI:   getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getEnv("MONGO_DB", "cluster0"),
		SQLitePath: getEnv("SQLITE_PATH", "activitystudio.db"),

		NATSURL: os.Getenv("NATS_URL"),

		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          os.Getenv("S3_REGION"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3PathStyle:       getBool("S3_PATH_STYLE", false),

		JWTSecret:    os.Getenv("RAG_TOKEN_SECRET"),
		RAGTokenTTL:  getDuration("RAG_TOKEN_TTL", 15*time.Minute),
		ShareCodeTTL: getDuration("SHARE_CODE_TTL", 7*24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
