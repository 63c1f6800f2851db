package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppMode       string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	JWTSecret     string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	KafkaBrokers  []string
	KafkaGroupID  string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string

	SSETimeoutMs        int
	SSEQueueCapacity    int
	SSEKeepAliveMinutes int

	UploadPoolWorkers int
	UploadPoolQueue   int
	EventPoolWorkers  int
	EventPoolQueue    int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		AppMode:       getEnv("APP_MODE", "development"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "chatwave"),
		DBPort:        getEnv("DB_PORT", "5432"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:  getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "chatwave"),
		S3Region:      getEnv("S3_REGION", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),

		SSETimeoutMs:        getEnvAsInt("SSE_TIMEOUT_MS", 300000),
		SSEQueueCapacity:    getEnvAsInt("SSE_EVENT_QUEUE_CAPACITY", 100),
		SSEKeepAliveMinutes: getEnvAsInt("SSE_KEEPALIVE_MINUTES", 30),

		UploadPoolWorkers: getEnvAsInt("UPLOAD_POOL_WORKERS", 10),
		UploadPoolQueue:   getEnvAsInt("UPLOAD_POOL_QUEUE", 100),
		EventPoolWorkers:  getEnvAsInt("EVENT_POOL_WORKERS", 2),
		EventPoolQueue:    getEnvAsInt("EVENT_POOL_QUEUE", 100),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
