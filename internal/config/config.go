package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath               string
	PhotoBackend         string
	PhotoPath            string
	S3Bucket             string
	S3Region             string
	S3Endpoint           string
	S3Prefix             string
	S3PathStyle          bool
	S3AccessKeyID        string
	S3SecretAccessKey    string
	PhotoMaxDimension    int
	PhotoLoadConcurrency int
	LogLevel             string
	LogFile              string
	LogFormat            string
}

// Load reads the configuration from the environment. Values from a .env file
// in the working directory are used for keys the environment does not set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath:               getEnv("DB_PATH", "artcatalog.db"),
		PhotoBackend:         getEnv("PHOTO_BACKEND", "local"),
		PhotoPath:            getEnv("PHOTO_LOCAL_PATH", "photos"),
		S3Bucket:             getEnv("PHOTO_S3_BUCKET", ""),
		S3Region:             getEnv("PHOTO_S3_REGION", "us-east-1"),
		S3Endpoint:           getEnv("PHOTO_S3_ENDPOINT", ""),
		S3Prefix:             getEnv("PHOTO_S3_PREFIX", "photos"),
		S3PathStyle:          getEnvBool("PHOTO_S3_PATH_STYLE", false),
		S3AccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		PhotoMaxDimension:    getEnvInt("PHOTO_MAX_DIMENSION", 800),
		PhotoLoadConcurrency: getEnvInt("PHOTO_LOAD_CONCURRENCY", 4),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFile:              getEnv("LOG_FILE", ""),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return b
}
