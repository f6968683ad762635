package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("VISION_TIMEOUT", "")
	t.Setenv("VISION_MAX_ATTEMPTS", "")
	t.Setenv("OBJECT_STORE", "")

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.VisionTimeout != 30*time.Second {
		t.Fatalf("expected 30s vision timeout, got %s", cfg.VisionTimeout)
	}
	if cfg.VisionMaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", cfg.VisionMaxAttempts)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("VISION_TIMEOUT", "15")
	t.Setenv("CACHE_TTL", "2h")
	t.Setenv("ARCHIVE_IMAGES", "true")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("CORS_ALLOW_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("ANALYZE_BURST", "nope")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.VisionTimeout != 15*time.Second {
		t.Fatalf("expected 15s, got %s", cfg.VisionTimeout)
	}
	if cfg.CacheTTL != 2*time.Hour {
		t.Fatalf("expected 2h, got %s", cfg.CacheTTL)
	}
	if !cfg.ArchiveImages {
		t.Fatalf("expected archive enabled")
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected s3, got %q", cfg.ObjectStoreType)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
	if cfg.AnalyzeBurst != 5 {
		t.Fatalf("expected burst fallback 5, got %d", cfg.AnalyzeBurst)
	}
}

func TestLoadEnvFilesKeepsRealEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tirescan.env")
	if err := os.WriteFile(path, []byte("TIRESCAN_TEST_A=from-file\nTIRESCAN_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("TIRESCAN_TEST_A", "from-env")
	t.Setenv("TIRESCAN_TEST_B", "")
	os.Unsetenv("TIRESCAN_TEST_B")

	applied := loadEnvFiles(filepath.Join(dir, "missing.env"))
	if len(applied) != 1 || applied[0] != path {
		t.Fatalf("expected only %s applied, got %v", path, applied)
	}
	if got := os.Getenv("TIRESCAN_TEST_A"); got != "from-env" {
		t.Fatalf("environment should win, got %q", got)
	}
	if got := os.Getenv("TIRESCAN_TEST_B"); got != "from-file" {
		t.Fatalf("expected file value, got %q", got)
	}
}
