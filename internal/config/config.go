package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from an optional config
// file and environment variables.
type Config struct {
	Env         string   `mapstructure:"env"`
	HTTPAddr    string   `mapstructure:"http_addr"`
	DBDriver    string   `mapstructure:"db_driver"`
	DBDSN       string   `mapstructure:"-"`
	KeyFile     string   `mapstructure:"key_file"`  // symmetric key material, created on first run
	ErrorLog    string   `mapstructure:"error_log"` // append-only validation failure log
	AdminUser   string   `mapstructure:"admin_user"`
	AuthSecret  string   `mapstructure:"-"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("key_file", "encryption.key")
	v.SetDefault("error_log", "error_log.json")
	v.SetDefault("admin_user", "admin")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("http_addr", "HTTP_ADDR")
	_ = v.BindEnv("db_driver", "DB_DRIVER")
	_ = v.BindEnv("db_dsn", "DB_DSN")
	_ = v.BindEnv("key_file", "KEY_FILE")
	_ = v.BindEnv("error_log", "ERROR_LOG")
	_ = v.BindEnv("admin_user", "ADMIN_USER")
	_ = v.BindEnv("auth_secret", "AUTH_HMAC_SECRET")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.DBDSN = v.GetString("db_dsn")
	cfg.AuthSecret = v.GetString("auth_secret")
	if cfg.AuthSecret == "" {
		if cfg.Env != "local" {
			return nil, errors.New("AUTH_HMAC_SECRET is required outside local env")
		}
		cfg.AuthSecret = "supersecret-dev-key"
	}
	return &cfg, nil
}
