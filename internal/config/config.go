package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ventas-backend/internal/logger"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
		DataDir            string   `mapstructure:"data_dir"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Cache struct {
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`

	Aggregation struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"aggregation"`

	Locale struct {
		TimeZone string `mapstructure:"time_zone"`
		Currency string `mapstructure:"currency"`
	} `mapstructure:"locale"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Backup BackupConfig `mapstructure:"backup"`

	Log logger.LogConfig `mapstructure:"log"`
}

// BackupConfig points at an S3-compatible bucket (AWS, R2, MinIO).
type BackupConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// DSN returns the pgx connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// DefaultCorsOrigins admits the desktop renderer, whether it is served from
// the app:// protocol or from a local dev server on any port.
var DefaultCorsOrigins = []string{"app://*", "http://localhost:*", "http://127.0.0.1:*"}

func Load(path string) (*Config, error) {
	// Load .env file if exists
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path == "" {
		path = "configs/config.yaml"
	}
	v.SetConfigFile(path)

	v.AutomaticEnv()

	// Binary works without a config file
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", DefaultCorsOrigins)
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type"})
	v.SetDefault("server.data_dir", ".")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "ventas_db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("aggregation.workers", 10)
	v.SetDefault("locale.time_zone", "America/Argentina/Buenos_Aires")
	v.SetDefault("locale.currency", "ARS")
	v.SetDefault("jwt.expiration_hours", 24*30)
	v.SetDefault("jwt.issuer", "ventas-backend")
	v.SetDefault("backup.region", "auto")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	log := logger.WithComponent("config")
	if err := v.ReadInConfig(); err != nil {
		log.Info().Str("path", path).Msg("no config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	}

	if key := os.Getenv("BACKUP_ACCESS_KEY"); key != "" {
		cfg.Backup.AccessKey = key
	}
	if secret := os.Getenv("BACKUP_SECRET_KEY"); secret != "" {
		cfg.Backup.SecretKey = secret
	}

	if cfg.Aggregation.Workers <= 0 {
		cfg.Aggregation.Workers = 10
	}

	return &cfg, nil
}
