package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.ListenAddr != "127.0.0.1:8501" || c.HistogramBins != 30 || c.TopChannels != 10 {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.AssetCache != "memory" || c.LottieURL != DefaultLottieURL {
		t.Errorf("unexpected asset defaults: %+v", c)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("top_channels: 7\nhistogram_bins: 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRENDBOARD_HISTOGRAM_BINS", "20")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.TopChannels != 7 {
		t.Errorf("file value not applied: %d", c.TopChannels)
	}
	if c.HistogramBins != 20 {
		t.Errorf("env should win over file: %d", c.HistogramBins)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("top_channels: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestSetAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Set("chart_width", "1024"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set("cors_origins", "http://a.test, http://b.test"); err != nil {
		t.Fatalf("set list: %v", err)
	}
	if err := c.Set("asset_cache", "disk"); err == nil || !strings.Contains(err.Error(), "asset_cache") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := c.Set("chart_width", "wide"); err == nil {
		t.Fatal("expected error for non-numeric width")
	}
	if err := c.Set("nope", "1"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.ChartWidth != 1024 {
		t.Errorf("chart_width not persisted: %d", back.ChartWidth)
	}
	if len(back.CORSOrigins) != 2 || back.CORSOrigins[1] != "http://b.test" {
		t.Errorf("cors_origins not persisted: %v", back.CORSOrigins)
	}
	if back.AssetCache != "memory" {
		t.Errorf("failed set must not change config: %q", back.AssetCache)
	}
}
