// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, validation, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"
  grpc_addr: "0.0.0.0:50051"

database:
  path: "./plotline.db"

auth:
  jwt_secret: "a-test-secret-long-enough-for-hs256!"
  token_ttl: "12h"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Database.Path != "./plotline.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("TokenTTL = %v, want 12h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.DevHeaderIdentity {
		t.Error("DevHeaderIdentity should default to false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_DefaultTokenTTL(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "./plotline.db"
auth:
  jwt_secret: "a-test-secret-long-enough-for-hs256!"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.TokenTTL != DefaultTokenTTL {
		t.Errorf("TokenTTL = %v, want default %v", cfg.Auth.TokenTTL, DefaultTokenTTL)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("PLOTLINE_TEST_SECRET", "secret-from-environment-variable!")

	path := writeConfig(t, `
database:
  path: "./plotline.db"
auth:
  jwt_secret: "${PLOTLINE_TEST_SECRET}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "secret-from-environment-variable!" {
		t.Errorf("JWTSecret = %q", cfg.Auth.JWTSecret)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "./plotline.db"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail without jwt_secret")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("error = %v, want mention of jwt_secret", err)
	}
}

// Dev header identity is an explicit alternative to a signing secret, never
// an implicit one.
func TestLoad_DevHeaderIdentityWithoutSecret(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "./plotline.db"
auth:
  dev_header_identity: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Auth.DevHeaderIdentity {
		t.Error("DevHeaderIdentity should be true")
	}
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "a-test-secret-long-enough-for-hs256!"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail without database.path")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "./plotline.db"
auth:
  jwt_secret: "a-test-secret-long-enough-for-hs256!"
  token_ttl: "soon"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail on an unparseable token_ttl")
	}
}

func TestLoad_NegativeDuration(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "./plotline.db"
auth:
  jwt_secret: "a-test-secret-long-enough-for-hs256!"
  token_ttl: "-1h"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() should reject a non-positive token_ttl")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() should fail on a missing file")
	}
}
