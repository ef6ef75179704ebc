package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PLAYER_VOLUME", "")
	t.Setenv("SEARCH_DELAY", "")
	cfg := Load()

	if cfg.PlayerVolume != 0.7 {
		t.Errorf("expected default volume 0.7, got %v", cfg.PlayerVolume)
	}
	if cfg.SearchDelay != 300*time.Millisecond {
		t.Errorf("expected default search delay 300ms, got %v", cfg.SearchDelay)
	}
	if cfg.PlayerTick != time.Second {
		t.Errorf("expected default tick 1s, got %v", cfg.PlayerTick)
	}
	if cfg.CatalogTimeout != 10*time.Second {
		t.Errorf("expected default catalog timeout 10s, got %v", cfg.CatalogTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PLAYER_VOLUME", "0.25")
	t.Setenv("SEARCH_DELAY", "50ms")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CATALOG_API_URL", "http://localhost:9999/v1/")
	t.Setenv("CATALOG_TIMEOUT", "3s")
	cfg := Load()

	if cfg.PlayerVolume != 0.25 {
		t.Errorf("expected volume 0.25, got %v", cfg.PlayerVolume)
	}
	if cfg.SearchDelay != 50*time.Millisecond {
		t.Errorf("expected search delay 50ms, got %v", cfg.SearchDelay)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.RedisDB)
	}
	if !cfg.MinioUseSSL {
		t.Error("expected MINIO_USE_SSL to be true")
	}
	if cfg.CatalogAPIURL != "http://localhost:9999/v1" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.CatalogAPIURL)
	}
	if cfg.CatalogTimeout != 3*time.Second {
		t.Errorf("expected catalog timeout 3s, got %v", cfg.CatalogTimeout)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("PLAYER_TICK", "soon")
	cfg := Load()

	if cfg.RedisDB != 0 {
		t.Errorf("expected fallback redis db 0, got %d", cfg.RedisDB)
	}
	if cfg.PlayerTick != time.Second {
		t.Errorf("expected fallback tick 1s, got %v", cfg.PlayerTick)
	}
}
