package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "EXPORT_SETTLE_MS", "EXPORT_VARIANT_PAUSE_MS", "EXPORT_RASTER_SCALE", "EXPORT_JPEG_QUALITY", "EXPORT_PAGE_MARGIN_MM", "EXPORT_VERIFY", "SESSION_IDLE_MINUTES"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	opts := cfg.Export.Options()
	if opts.SettleDelay != 100*time.Millisecond || opts.VariantPause != 500*time.Millisecond {
		t.Errorf("delays = %v / %v", opts.SettleDelay, opts.VariantPause)
	}
	if opts.JPEGQuality != 85 || opts.MarginMM != 10 || !opts.Verify {
		t.Errorf("export options = %+v", opts)
	}
	if cfg.Export.RasterOptions().Scale != 1.5 {
		t.Errorf("scale = %v", cfg.Export.RasterOptions().Scale)
	}
	if cfg.Session.IdleTimeout() != 2*time.Hour {
		t.Errorf("idle = %v", cfg.Session.IdleTimeout())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("EXPORT_RASTER_SCALE", "2")
	t.Setenv("EXPORT_VERIFY", "no")
	t.Setenv("EXPORT_JPEG_QUALITY", "not-a-number")
	cfg := Load()
	if cfg.Server.Port != "9000" || cfg.Export.RasterScale != 2 || cfg.Export.Verify {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Export.JPEGQuality != 85 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Export.JPEGQuality)
	}
}
