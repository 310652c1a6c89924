// Package config loads service configuration from the environment with
// sensible local-development defaults.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the service configuration. All settings come from
// SIGNUPD_-prefixed environment variables.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string
	// Store selects the book backend: "memory" or "postgres".
	Store string
	// DB holds the Postgres connection settings, used when Store is
	// "postgres".
	DB Database
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds a libpq-compatible connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SIGNUPD")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("store", "memory")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "signupsheets")
	v.SetDefault("db_sslmode", "disable")

	cfg := Config{
		Addr:  v.GetString("addr"),
		Store: v.GetString("store"),
		DB: Database{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
	}

	switch cfg.Store {
	case "memory", "postgres":
	default:
		return Config{}, fmt.Errorf("unknown store %q (want memory or postgres)", cfg.Store)
	}
	return cfg, nil
}
