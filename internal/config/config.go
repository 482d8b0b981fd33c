package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Report   ReportConfig   `mapstructure:"report"`
	Lookup   LookupConfig   `mapstructure:"lookup"`
	Confirm  ConfirmConfig  `mapstructure:"confirm"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// CORSOrigins lists dashboard origins; empty allows any.
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"` // stdout/file/both
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// UpstreamConfig warehouse REST API
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReportConfig paged report aggregation and export
type ReportConfig struct {
	// FetchPageSize is the page size used while aggregating, independent of the
	// page size the UI displays.
	FetchPageSize int           `mapstructure:"fetch_page_size"`
	MaxPages      int           `mapstructure:"max_pages"`
	LinkTTL       time.Duration `mapstructure:"link_ttl"`
	RevokeDelay   time.Duration `mapstructure:"revoke_delay"`
	SlotTTL       time.Duration `mapstructure:"slot_ttl"`
	Timezone      string        `mapstructure:"timezone"`
}

type LookupConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	MinChars int           `mapstructure:"min_chars"`
	Limit    int           `mapstructure:"limit"`
}

type ConfirmConfig struct {
	Window time.Duration `mapstructure:"window"`
}

// Defaults returns the built-in configuration that file and env values override.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Mode:            "debug",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    0,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "127.0.0.1",
			Port:            5432,
			User:            "livo",
			DBName:          "livo",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Redis: RedisConfig{
			Host:     "127.0.0.1",
			Port:     6379,
			PoolSize: 10,
		},
		MinIO: MinIOConfig{
			Bucket: "livo-exports",
		},
		JWT: JWTConfig{
			Issuer: "livo",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stdout",
			FilePath:   "logs/livo.log",
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
		Upstream: UpstreamConfig{
			BaseURL: "http://127.0.0.1:8081/api",
			Timeout: 30 * time.Second,
		},
		Report: ReportConfig{
			FetchPageSize: 100,
			MaxPages:      1000,
			LinkTTL:       5 * time.Minute,
			RevokeDelay:   2 * time.Minute,
			SlotTTL:       10 * time.Minute,
			Timezone:      "Asia/Jakarta",
		},
		Lookup: LookupConfig{
			Debounce: 300 * time.Millisecond,
			CacheTTL: 30 * time.Second,
			MinChars: 1,
			Limit:    20,
		},
		Confirm: ConfirmConfig{
			Window: 3 * time.Second,
		},
	}
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	if c.Report.FetchPageSize <= 0 {
		return fmt.Errorf("report.fetch_page_size must be positive, got %d", c.Report.FetchPageSize)
	}
	if c.Report.MaxPages <= 0 {
		return fmt.Errorf("report.max_pages must be positive, got %d", c.Report.MaxPages)
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Confirm.Window <= 0 {
		return fmt.Errorf("confirm.window must be positive")
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("report.timezone: %w", err)
	}
	return nil
}

// Location resolves Report.Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.cors_origins", "CORS_ORIGINS")

	// Database
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// MinIO
	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Upstream
	v.BindEnv("upstream.base_url", "UPSTREAM_BASE_URL")
	v.BindEnv("upstream.timeout", "UPSTREAM_TIMEOUT")

	// Report
	v.BindEnv("report.fetch_page_size", "REPORT_FETCH_PAGE_SIZE")
	v.BindEnv("report.timezone", "REPORT_TIMEZONE")
}
