package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// RoutingConfig holds the route-resolution tuning knobs.
type RoutingConfig struct {
	GoogleMapsAPIKey string
	RouteCacheTTL    time.Duration
	CoordCacheSize   int
	DebounceWindow   time.Duration
	RedisAddr        string // optional; empty selects the in-memory coordinate cache
}

// ServiceConfig holds all configuration for the shuttle service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	DB             DatabaseConfig
	Kafka          KafkaConfig
	JWT            JWTConfig
	Routing        RoutingConfig
	PricingBaseURL string
}

// Load reads configuration from SHUTTLE_-prefixed environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("SHUTTLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shuttle")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "skylift.")
	v.SetDefault("ROUTE_CACHE_TTL", "10m")
	v.SetDefault("COORD_CACHE_SIZE", 150)
	v.SetDefault("DEBOUNCE_WINDOW", "800ms")
	v.SetDefault("PRICING_BASE_URL", "http://localhost:8090")

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("SHUTTLE_JWT_SECRET is required")
	}
	mapsKey := v.GetString("GOOGLE_MAPS_API_KEY")
	if mapsKey == "" {
		return nil, fmt.Errorf("SHUTTLE_GOOGLE_MAPS_API_KEY is required")
	}

	return &ServiceConfig{
		Port:   normalizePort(v.GetString("SERVICE_PORT")),
		AppEnv: v.GetString("APP_ENV"),
		DB: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		JWT: JWTConfig{Secret: jwtSecret},
		Routing: RoutingConfig{
			GoogleMapsAPIKey: mapsKey,
			RouteCacheTTL:    v.GetDuration("ROUTE_CACHE_TTL"),
			CoordCacheSize:   v.GetInt("COORD_CACHE_SIZE"),
			DebounceWindow:   v.GetDuration("DEBOUNCE_WINDOW"),
			RedisAddr:        v.GetString("REDIS_ADDR"),
		},
		PricingBaseURL: v.GetString("PRICING_BASE_URL"),
	}, nil
}

func normalizePort(port string) string {
	if port != "" && !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}
