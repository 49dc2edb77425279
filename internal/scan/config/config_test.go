package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != "0.0.0.0:5000" || cfg.Storage.Driver != DriverDisk || cfg.Frames.Width != 800 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: 127.0.0.1:8080
  settle_ms: 180
storage:
  driver: s3
  s3:
    bucket: hawkeye-uploads
    region: eu-west-1
analyzer:
  demo_delay: 3s
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:8080" || cfg.Server.SettleMS != 180 {
		t.Fatalf("server overrides not applied: %+v", cfg.Server)
	}
	if cfg.Storage.S3.Bucket != "hawkeye-uploads" || cfg.Storage.Driver != DriverS3 {
		t.Fatalf("storage overrides not applied: %+v", cfg.Storage)
	}
	if cfg.Analyzer.DemoDelay != 3*time.Second {
		t.Fatalf("expected 3s demo delay, got %v", cfg.Analyzer.DemoDelay)
	}
	if cfg.Server.MaxUploadMB != 512 {
		t.Fatalf("expected untouched default upload limit, got %d", cfg.Server.MaxUploadMB)
	}
	if cfg.MaxUploadBytes() != 512<<20 {
		t.Fatalf("unexpected byte limit %d", cfg.MaxUploadBytes())
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "server:\n  listne: oops\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected strict decoding to reject unknown key")
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = DriverS3
	cfg.Frames.Width = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "storage.s3.bucket") || !strings.Contains(msg, "frames.width") {
		t.Fatalf("expected both problems reported, got %q", msg)
	}
}

func TestLoadGeminiAnalyzer(t *testing.T) {
	path := writeConfig(t, `
analyzer:
  driver: gemini
  model: gemini-2.5-flash
  search: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analyzer.Driver != AnalyzerGemini || cfg.Analyzer.Model != "gemini-2.5-flash" || cfg.Analyzer.Search {
		t.Fatalf("analyzer overrides not applied: %+v", cfg.Analyzer)
	}
}

func TestValidateAnalyzerDriver(t *testing.T) {
	cfg := Default()
	cfg.Analyzer.Driver = "openai"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "analyzer.driver") {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}

	cfg = Default()
	cfg.Analyzer.Driver = AnalyzerGemini
	cfg.Analyzer.Model = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "analyzer.model") {
		t.Fatalf("expected missing model error, got %v", err)
	}

	cfg = Default()
	cfg.Analyzer.DemoFile = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "analyzer.demo_file") {
		t.Fatalf("expected missing demo file error, got %v", err)
	}
}
