package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/repository"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         int    `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	KafkaBrokers   string        `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic     string        `mapstructure:"KAFKA_TOPIC"`
	OutboxInterval time.Duration `mapstructure:"OUTBOX_INTERVAL"`

	LogMode string `mapstructure:"LOG_MODE"`
	LogFile string `mapstructure:"LOG_FILE"`
}

var defaults = map[string]interface{}{
	"HTTP_PORT":         "3000",
	"REQUEST_TIMEOUT":   30 * time.Second,
	"SHUTDOWN_TIMEOUT":  10 * time.Second,
	"DB_HOST":           "localhost",
	"DB_PORT":           5432,
	"DB_USER":           "postgres",
	"DB_PASSWORD":       "postgres",
	"DB_NAME":           "yankicks",
	"MIGRATIONS_PATH":   "./internal/repository/migrations",
	"REDIS_ADDR":        "",
	"REDIS_PASSWORD":    "",
	"CATALOG_CACHE_TTL": 10 * time.Minute,
	"KAFKA_BROKERS":     "",
	"KAFKA_TOPIC":       "order-events",
	"OUTBOX_INTERVAL":   time.Second,
	"LOG_MODE":          "development",
	"LOG_FILE":          "",
}

// Load reads defaults, then the optional config file, then the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.HTTPPort == "" {
		return nil, errors.New("HTTP_PORT must not be empty")
	}
	return cfg, nil
}

func (c *Config) Credentials() *repository.Credentials {
	return &repository.Credentials{
		Host:              c.DBHost,
		Port:              c.DBPort,
		User:              c.DBUser,
		Password:          c.DBPassword,
		DBName:            c.DBName,
		MigrationsDirPath: c.MigrationsPath,
	}
}

func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
