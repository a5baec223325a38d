package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the worker needs at startup. The bucket, queue and
// endpoint identifiers have no sane defaults and are required; everything
// else falls back to the values the deployment has always run with.
type Config struct {
	InputBucket  string // S3_INPUT_BUCKET
	OutputBucket string // S3_OUTPUT_BUCKET
	QueueName    string // BATCH_QUEUE
	AMQPURL      string // AMQP_URL

	MinioEndpoint  string // MINIO_ENDPOINT
	MinioAccessKey string // MINIO_ACCESS_KEY
	MinioSecretKey string // MINIO_SECRET_KEY
	MinioSSL       bool   // MINIO_SSL

	WorkDir           string        // WORK_DIR
	BatchSize         int           // BATCH_SIZE
	VisibilityTimeout time.Duration // VISIBILITY_TIMEOUT_SECONDS
	WaitTime          time.Duration // WAIT_TIME_SECONDS

	HTTPPort string // PORT
	LogLevel string // LOG_LEVEL
}

// NewConfigFromEnv loads a .env file when present, then reads the
// environment. Missing required variables are a startup error.
func NewConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		InputBucket:       os.Getenv("S3_INPUT_BUCKET"),
		OutputBucket:      os.Getenv("S3_OUTPUT_BUCKET"),
		QueueName:         os.Getenv("BATCH_QUEUE"),
		AMQPURL:           os.Getenv("AMQP_URL"),
		MinioEndpoint:     os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:    getenv("MINIO_ACCESS_KEY", "admin"),
		MinioSecretKey:    getenv("MINIO_SECRET_KEY", "admin123"),
		MinioSSL:          strings.EqualFold(getenv("MINIO_SSL", "false"), "true"),
		WorkDir:           getenv("WORK_DIR", "/processed"),
		BatchSize:         getenvInt("BATCH_SIZE", 10),
		VisibilityTimeout: time.Duration(getenvInt("VISIBILITY_TIMEOUT_SECONDS", 120)) * time.Second,
		WaitTime:          time.Duration(getenvInt("WAIT_TIME_SECONDS", 20)) * time.Second,
		HTTPPort:          getenv("PORT", "8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
	}

	var missing []string
	for _, req := range []struct{ name, value string }{
		{"S3_INPUT_BUCKET", cfg.InputBucket},
		{"S3_OUTPUT_BUCKET", cfg.OutputBucket},
		{"BATCH_QUEUE", cfg.QueueName},
		{"AMQP_URL", cfg.AMQPURL},
		{"MINIO_ENDPOINT", cfg.MinioEndpoint},
	} {
		if req.value == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
