package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	v := newViper(t)
	v.Set("auth.secret", "s3cret")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", cfg.Auth.TokenTTL)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.DSN != "clientdesk.db" {
		t.Fatalf("unexpected db config: %+v", cfg.DB)
	}
	if cfg.Login.Burst != 5 {
		t.Fatalf("unexpected login config: %+v", cfg.Login)
	}
}

func TestLoadAllowsMissingSecret(t *testing.T) {
	// The secret is only needed by serve; seed runs without one.
	v := newViper(t)
	if _, err := Load(v); err != nil {
		t.Fatalf("Load without secret: %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]struct {
		key   string
		value any
	}{
		"bad encoding": {"auth.secret_encoding", "hex"},
		"bad driver":   {"db.driver", "oracle"},
		"bad burst":    {"login.burst", 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			v := newViper(t)
			v.Set("auth.secret", "s3cret")
			v.Set(tc.key, tc.value)
			if _, err := Load(v); err == nil {
				t.Fatalf("expected error for %s=%v", tc.key, tc.value)
			}
		})
	}
}

func TestSecretEncodingIsNormalized(t *testing.T) {
	v := newViper(t)
	v.Set("auth.secret", "s3cret")
	v.Set("auth.secret_encoding", "  Base64 ")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.SecretEncoding != "base64" {
		t.Fatalf("expected normalized encoding, got %q", cfg.Auth.SecretEncoding)
	}
}
