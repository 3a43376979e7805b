package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	Env     string
	AppName string

	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool

	PostgresURL       string
	NotificationStore string

	JWTSecret string
	JWTTTL    time.Duration

	FirebaseCredentialsPath string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RateLimitMax    int
	RateLimitWindow time.Duration

	AMQPURL               string
	AMQPNotificationQueue string

	MetricsPort        string
	CORSAllowedOrigins []string

	envFileLoaded bool
}

// Load reads configuration from the environment after loading an optional .env file
func Load() *Config {
	envFileLoaded := godotenv.Load() == nil

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		Env:     getEnv("ENV", "development"),
		AppName: getEnv("APP_NAME", "recipehub"),

		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "recipehub"),
		MongoTransactions: getBool("MONGO_TRANSACTIONS", false),

		PostgresURL:       getEnv("POSTGRES_URL", ""),
		NotificationStore: strings.ToLower(getEnv("NOTIFICATION_STORE", "mongo")),

		JWTSecret: getEnv("JWT_SECRET", "supersecretjwtkey"),
		JWTTTL:    getDuration("JWT_TTL", 30*24*time.Hour),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getInt("REDIS_DB", 0),
		RateLimitMax:    getInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),

		AMQPURL:               getEnv("AMQP_URL", ""),
		AMQPNotificationQueue: getEnv("AMQP_NOTIFICATION_QUEUE", "recipehub.notifications"),

		MetricsPort:        getEnv("METRICS_PORT", "9090"),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
	cfg.envFileLoaded = envFileLoaded
	return cfg
}

// EnvFileLoaded reports whether a .env file was found
func (c *Config) EnvFileLoaded() bool {
	return c.envFileLoaded
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
