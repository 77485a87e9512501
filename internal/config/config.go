package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage strategy names for FRIEND_STORAGE / SESSION_STORAGE.
const (
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	PGUser              string
	PGPassword          string
	PGAuthorityMaster   string   // "host:port"
	PGAuthorityReplicas []string // parsed from a comma list of "host:port"
	PGDBName            string
	PGSSLMode           string
	MasterPoolMaxSize   int
	ReplicaPoolMaxSize  int

	FeedCacheRedisURL string

	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUsername string
	RabbitMQPassword string

	HTTPServerAddress        string
	WSServerAddress          string
	DialogsServiceURL        string
	DialogsHTTPServerAddress string

	JWTSecret   string
	TokenMaxAge int // seconds

	FriendStorage  string
	SessionStorage string

	OnePostPerUser bool

	SelfHostName string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	return &Config{
		PGUser:              getEnv("PG_USER", "postgres"),
		PGPassword:          getEnv("PG_PASSWORD", ""),
		PGAuthorityMaster:   getEnv("PG_AUTHORITY_MASTER", "localhost:5432"),
		PGAuthorityReplicas: splitHostList(getEnv("PG_AUTHORITY_REPLICA", "")),
		PGDBName:            getEnv("PG_DBNAME", "socialnet"),
		PGSSLMode:           getEnv("PG_SSLMODE", "disable"),
		MasterPoolMaxSize:   getEnvAsInt("PG_MASTER_POOL_MAX_SIZE", 10),
		ReplicaPoolMaxSize:  getEnvAsInt("PG_REPLICA_POOL_MAX_SIZE", 10),

		FeedCacheRedisURL: getEnv("POSTS_FEED_CACHE_REDIS_URL", "redis://localhost:6379"),

		RabbitMQHost:     getEnv("RABBITMQ_CONNECTION_HOST", "localhost"),
		RabbitMQPort:     getEnv("RABBITMQ_CONNECTION_PORT", "5672"),
		RabbitMQUsername: getEnv("RABBITMQ_CONNECTION_USERNAME", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_CONNECTION_PASSWORD", "guest"),

		HTTPServerAddress:        getEnv("HTTP_SERVER_ADDRESS", "127.0.0.1:8000"),
		WSServerAddress:          getEnv("WS_SERVER_ADDRESS", "127.0.0.1:8001"),
		DialogsServiceURL:        getEnv("DIALOGS_SERVICE_URL", "http://127.0.0.1:8002"),
		DialogsHTTPServerAddress: getEnv("DIALOGS_HTTP_SERVER_ADDRESS", "127.0.0.1:8002"),

		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenMaxAge: getEnvAsInt("TOKEN_MAX_AGE", 86400),

		FriendStorage:  getEnv("FRIEND_STORAGE", StoragePostgres),
		SessionStorage: getEnv("SESSION_STORAGE", StoragePostgres),

		OnePostPerUser: getEnvAsBool("POSTS_FEED_ONE_POST_PER_USER", false),

		SelfHostName: getEnv("SELF_HOST_NAME", "unknown"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// splitHostList parses a comma-separated "host:port,host:port" list,
// dropping empty entries.
func splitHostList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			hosts = append(hosts, p)
		}
	}
	return hosts
}
