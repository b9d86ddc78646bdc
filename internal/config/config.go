package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
)

// Metrics backends.
const (
	MetricsPrometheus = "prometheus"
	MetricsCloudWatch = "cloudwatch"
	MetricsNone       = "none"
)

// OrdersCollection is the Mongo collection orders are written to.
const OrdersCollection = "orders"

type Config struct {
	Storage StorageConfig
	Log     LogConfig
	Metrics MetricsConfig
	Queue   QueueConfig
}

type StorageConfig struct {
	Backend     string
	MongoURI    string
	MongoDBName string
	Collection  string
	OrdersTable string
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Backend   string
	Namespace string
}

type QueueConfig struct {
	URL string
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load(viper.New(), true)
}

// LoadForTool loads config for CLI tools that never open the order store.
func LoadForTool() (Config, error) {
	_ = godotenv.Load()
	return load(viper.New(), false)
}

func load(v *viper.Viper, requireStorage bool) (Config, error) {
	v.AutomaticEnv()

	v.SetDefault("storage_backend", BackendMongo)
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_db_name", "webhook_db")
	v.SetDefault("orders_table", "orders")
	v.SetDefault("orders_queue_url", "")
	v.SetDefault("metrics_backend", MetricsPrometheus)
	v.SetDefault("metrics_namespace", "WebhookOrderflow")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	cfg := Config{
		Storage: StorageConfig{
			Backend:     strings.ToLower(strings.TrimSpace(v.GetString("storage_backend"))),
			MongoURI:    strings.TrimSpace(v.GetString("mongo_uri")),
			MongoDBName: strings.TrimSpace(v.GetString("mongo_db_name")),
			Collection:  OrdersCollection,
			OrdersTable: strings.TrimSpace(v.GetString("orders_table")),
		},
		Log: LogConfig{
			Level:  strings.TrimSpace(v.GetString("log_level")),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		},
		Metrics: MetricsConfig{
			Backend:   strings.ToLower(strings.TrimSpace(v.GetString("metrics_backend"))),
			Namespace: strings.TrimSpace(v.GetString("metrics_namespace")),
		},
		Queue: QueueConfig{
			URL: strings.TrimSpace(v.GetString("orders_queue_url")),
		},
	}

	if cfg.Storage.MongoDBName == "" {
		cfg.Storage.MongoDBName = "webhook_db"
	}

	if err := cfg.validateStorage(requireStorage); err != nil {
		return Config{}, err
	}

	switch cfg.Metrics.Backend {
	case MetricsPrometheus, MetricsCloudWatch, MetricsNone:
	default:
		return Config{}, fmt.Errorf("invalid METRICS_BACKEND: %q", cfg.Metrics.Backend)
	}

	return cfg, nil
}

func (cfg Config) validateStorage(requireStorage bool) error {
	switch cfg.Storage.Backend {
	case BackendMongo:
		if requireStorage && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("MONGO_URI must be set")
		}
	case BackendMemory:
	case BackendDynamoDB:
		if requireStorage && cfg.Storage.OrdersTable == "" {
			return fmt.Errorf("ORDERS_TABLE must be set for the dynamodb backend")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND: %q", cfg.Storage.Backend)
	}
	return nil
}
