package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PROMPT_DISPATCH_INTERVAL", "not-a-duration")
	t.Setenv("BADGE_CACHE_TTL", "")

	cfg := LoadConfig()
	if cfg.DBDriver != "" {
		t.Errorf("DBDriver = %q, want empty override", cfg.DBDriver)
	}
	if cfg.SchedulerInterval != time.Minute {
		t.Errorf("SchedulerInterval = %v, want %v", cfg.SchedulerInterval, time.Minute)
	}
	if cfg.BadgeCacheTTL != 30*time.Second {
		t.Errorf("BadgeCacheTTL = %v, want 30s", cfg.BadgeCacheTTL)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("BADGE_CACHE_TTL", "10s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := LoadConfig()
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, "sqlite")
	}
	if !cfg.RedisEnabled {
		t.Error("RedisEnabled = false, want true")
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", cfg.RedisDB)
	}
	if cfg.BadgeCacheTTL != 10*time.Second {
		t.Errorf("BadgeCacheTTL = %v, want 10s", cfg.BadgeCacheTTL)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
}
