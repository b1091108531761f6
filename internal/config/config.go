// Package config assembles runtime settings from defaults, an optional YAML
// file and CLIENTDESK_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"clientdesk.org/internal/auth"
	"clientdesk.org/internal/store"
)

// Config holds everything the serve and seed commands need.
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	DB     DBConfig
	Seed   SeedConfig
	CORS   CORSConfig
	Login  LoginConfig
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	Secret         string
	SecretEncoding string
	TokenTTL       time.Duration
}

type DBConfig struct {
	Driver string
	DSN    string
}

type SeedConfig struct {
	UsersFile   string
	ClientsFile string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LoginConfig bounds the login endpoint with a per-IP token bucket.
type LoginConfig struct {
	RatePerSec float64
	Burst      int
}

// SetDefaults installs the default value for every key on v. Called once by
// the CLI before env and file sources are merged in.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.secret_encoding", auth.SecretEncodingAuto)
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("db.driver", store.DriverSQLite)
	v.SetDefault("db.dsn", "clientdesk.db")

	v.SetDefault("seed.users_file", "")
	v.SetDefault("seed.clients_file", "")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("login.rate_per_sec", 1.0)
	v.SetDefault("login.burst", 5)
}

// Load reads the assembled settings out of v and validates them.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Auth: AuthConfig{
			Secret:         v.GetString("auth.secret"),
			SecretEncoding: strings.ToLower(strings.TrimSpace(v.GetString("auth.secret_encoding"))),
			TokenTTL:       v.GetDuration("auth.token_ttl"),
		},
		DB: DBConfig{
			Driver: v.GetString("db.driver"),
			DSN:    v.GetString("db.dsn"),
		},
		Seed: SeedConfig{
			UsersFile:   v.GetString("seed.users_file"),
			ClientsFile: v.GetString("seed.clients_file"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
		Login: LoginConfig{
			RatePerSec: v.GetFloat64("login.rate_per_sec"),
			Burst:      v.GetInt("login.burst"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks everything except the auth secret, which only serve needs;
// key derivation rejects a blank secret at startup.
func (c *Config) validate() error {
	switch c.Auth.SecretEncoding {
	case auth.SecretEncodingAuto, auth.SecretEncodingBase64, auth.SecretEncodingRaw:
	default:
		return fmt.Errorf("config: unknown auth.secret_encoding %q", c.Auth.SecretEncoding)
	}
	if c.Auth.TokenTTL < 0 {
		return errors.New("config: auth.token_ttl must not be negative")
	}
	switch c.DB.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("config: unknown db.driver %q", c.DB.Driver)
	}
	if c.Login.RatePerSec <= 0 || c.Login.Burst <= 0 {
		return errors.New("config: login rate limit must be positive")
	}
	return nil
}
