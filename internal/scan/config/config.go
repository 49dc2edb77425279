// Package config loads the scan server settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DriverDisk = "disk"
	DriverS3   = "s3"

	AnalyzerDemo   = "demo"
	AnalyzerGemini = "gemini"
)

type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Storage     StorageConfig  `yaml:"storage"`
	ProductsDir string         `yaml:"products_dir"`
	Analyzer    AnalyzerConfig `yaml:"analyzer"`
	Frames      FramesConfig   `yaml:"frames"`
	Log         LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener. SettleMS is handed to the
// browser as the overlay settle delay.
type ServerConfig struct {
	Listen      string `yaml:"listen"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
	SettleMS    int    `yaml:"settle_ms"`
	Assets      string `yaml:"assets"`
}

type StorageConfig struct {
	Driver     string   `yaml:"driver"`
	UploadsDir string   `yaml:"uploads_dir"`
	S3         S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// AnalyzerConfig selects the analyzer. The demo driver replays DemoFile;
// the gemini driver reads its API key from GEMINI_API_KEY or GOOGLE_API_KEY.
type AnalyzerConfig struct {
	Driver    string        `yaml:"driver"`
	Model     string        `yaml:"model"`
	Search    bool          `yaml:"search"`
	DemoFile  string        `yaml:"demo_file"`
	DemoDelay time.Duration `yaml:"demo_delay"`
	Timeout   time.Duration `yaml:"timeout"`
}

type FramesConfig struct {
	FFmpeg string `yaml:"ffmpeg"`
	Width  int    `yaml:"width"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:      "0.0.0.0:5000",
			MaxUploadMB: 512,
			SettleMS:    150,
			Assets:      "ui/static",
		},
		Storage: StorageConfig{
			Driver:     DriverDisk,
			UploadsDir: "static/uploads",
		},
		ProductsDir: "static/products",
		Analyzer: AnalyzerConfig{
			Driver:   AnalyzerDemo,
			Model:    "gemini-2.5-flash-lite",
			Search:   true,
			DemoFile: "dummy_data.json",
			Timeout:  5 * time.Minute,
		},
		Frames: FramesConfig{
			FFmpeg: "ffmpeg",
			Width:  800,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Listen) == "" {
		errs = append(errs, errors.New("server.listen is required"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("server.max_upload_mb must be positive"))
	}
	if c.Server.SettleMS < 0 {
		errs = append(errs, errors.New("server.settle_ms must not be negative"))
	}
	switch c.Storage.Driver {
	case DriverDisk:
		if strings.TrimSpace(c.Storage.UploadsDir) == "" {
			errs = append(errs, errors.New("storage.uploads_dir is required for the disk driver"))
		}
	case DriverS3:
		if strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			errs = append(errs, errors.New("storage.s3.bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	switch c.Analyzer.Driver {
	case AnalyzerDemo:
		if strings.TrimSpace(c.Analyzer.DemoFile) == "" {
			errs = append(errs, errors.New("analyzer.demo_file is required for the demo driver"))
		}
	case AnalyzerGemini:
		if strings.TrimSpace(c.Analyzer.Model) == "" {
			errs = append(errs, errors.New("analyzer.model is required for the gemini driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("analyzer.driver %q is not supported", c.Analyzer.Driver))
	}
	if c.Analyzer.Timeout < 0 {
		errs = append(errs, errors.New("analyzer.timeout must not be negative"))
	}
	if strings.TrimSpace(c.ProductsDir) == "" {
		errs = append(errs, errors.New("products_dir is required"))
	}
	if c.Frames.Width <= 0 {
		errs = append(errs, errors.New("frames.width must be positive"))
	}
	return errors.Join(errs...)
}

// MaxUploadBytes converts the configured limit to bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
