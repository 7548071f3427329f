package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("DB_TIMEOUT", "not-a-duration")
	t.Setenv("SESSION_REQUIRED", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	cfg := Load()
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v, want 24h", cfg.JWTExpiry)
	}
	if cfg.DBTimeout != 5*time.Second {
		t.Errorf("DBTimeout = %v, want 5s fallback", cfg.DBTimeout)
	}
	if !cfg.SessionRequired {
		t.Error("SessionRequired should default to true")
	}
	if cfg.RateLimitPerMinute != 0 {
		t.Errorf("RateLimitPerMinute = %d, want 0 (disabled)", cfg.RateLimitPerMinute)
	}
}

func TestAdminEmailList(t *testing.T) {
	cfg := &Config{AdminEmails: " Root@Example.com, ,ops@example.com"}
	got := cfg.AdminEmailList()
	want := []string{"root@example.com", "ops@example.com"}
	if len(got) != len(want) {
		t.Fatalf("AdminEmailList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AdminEmailList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433", DBSSLMode: "require"}
	want := "host=db user=u password=p dbname=n port=5433 sslmode=require TimeZone=UTC"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
