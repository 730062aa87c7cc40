package config

import (
	"testing"
	"time"

	"github.com/labstack/gommon/log"
)

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-2")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()
	if c.Capacity != 1 || c.RefillTokens != 1 {
		t.Fatalf("expected clamped capacity and refill, got %+v", c)
	}
	if c.TTL != 10*time.Second {
		t.Fatalf("expected ttl raised to 5 intervals, got %s", c.TTL)
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")
	t.Setenv("CACHE_ENABLED", "off")
	t.Setenv("CACHE_TTL", "nonsense")

	c := LoadCacheConfig()
	if c.Enabled {
		t.Fatalf("expected cache disabled")
	}
	if !c.Methods["GET"] || !c.Methods["HEAD"] || len(c.Methods) != 2 {
		t.Fatalf("unexpected methods %v", c.Methods)
	}
	if c.TTL != 30*time.Second {
		t.Fatalf("expected default ttl, got %s", c.TTL)
	}
}

func TestAMQPURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
	if got := AMQPURL(); got != "amqp://u:p@broker:5672/" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]log.Lvl{"debug": log.DEBUG, "WARN": log.WARN, "error": log.ERROR, "": log.INFO, "loud": log.INFO} {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
