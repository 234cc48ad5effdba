package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"

	"github.com/elonfeng/trendpulse/internal/config"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Tiêu…", truncate("Tiêu đề dài", 5))
}

func TestNewLoggerLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, newLogger(config.LogConfig{Level: "DEBUG", Format: "json"}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger(config.LogConfig{Level: "loud"}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger(config.LogConfig{}).GetLevel())
}

func TestOpenCacheDrivers(t *testing.T) {
	cfg := config.Default()
	a := &app{cfg: cfg, logger: zerolog.Nop()}

	cache, err := a.openCache(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, cache)

	cfg.Cache.Driver = "sqlite"
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")
	cache, err = a.openCache(context.Background())
	assert.Equal(t, nil, err)
	assert.NotEqual(t, nil, cache)
	assert.Equal(t, 1, len(a.closers))
	a.Close()

	cfg.Cache.Driver = "memcached"
	_, err = a.openCache(context.Background())
	assert.Equal(t, `unknown cache driver "memcached"`, err.Error())
}

func TestAlertManagerFromConfig(t *testing.T) {
	cfg := config.Default()
	a := &app{cfg: cfg, logger: zerolog.Nop()}
	assert.Equal(t, false, a.alertManager().HasNotifiers())

	cfg.Alerts.Webhook.Enabled = true
	cfg.Alerts.Webhook.URL = "https://hooks.example/trend"
	assert.Equal(t, true, a.alertManager().HasNotifiers())
}
