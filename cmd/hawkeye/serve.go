package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/hawkeye/internal/scan/analyzer"
	"github.com/Its-donkey/hawkeye/internal/scan/config"
	"github.com/Its-donkey/hawkeye/internal/scan/frames"
	"github.com/Its-donkey/hawkeye/internal/scan/linkmeta"
	"github.com/Its-donkey/hawkeye/internal/scan/metrics"
	"github.com/Its-donkey/hawkeye/internal/scan/server"
	"github.com/Its-donkey/hawkeye/internal/scan/storage"
	"github.com/Its-donkey/hawkeye/logging"
)

type serveFlags struct {
	config   string
	listen   string
	analyzer string
	demo     string
	uploads  string
	products string
}

func serveCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scan server",
		Long: `Run the scan server.

Settings come from the YAML file given with --config; the other flags
override individual keys.

Examples:
  hawkeye serve
  hawkeye serve --config hawkeye.yaml
  hawkeye serve --listen 127.0.0.1:8080 --demo testdata/listings.json
  GEMINI_API_KEY=... hawkeye serve --analyzer gemini`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cmd, flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&flags.listen, "listen", "", "Address to listen on")
	cmd.Flags().StringVar(&flags.analyzer, "analyzer", "", "Analyzer driver: demo or gemini")
	cmd.Flags().StringVar(&flags.demo, "demo", "", "JSON file of listings to return for every scan")
	cmd.Flags().StringVar(&flags.uploads, "uploads", "", "Directory for uploaded videos")
	cmd.Flags().StringVar(&flags.products, "products", "", "Directory for cropped product stills")

	return cmd
}

func loadServeConfig(cmd *cobra.Command, flags serveFlags) (config.Config, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen = flags.listen
	}
	if cmd.Flags().Changed("analyzer") {
		cfg.Analyzer.Driver = flags.analyzer
	}
	if cmd.Flags().Changed("demo") {
		cfg.Analyzer.DemoFile = flags.demo
	}
	if cmd.Flags().Changed("uploads") {
		cfg.Storage.UploadsDir = flags.uploads
	}
	if cmd.Flags().Changed("products") {
		cfg.ProductsDir = flags.products
	}
	return cfg, cfg.Validate()
}

// newLogger logs to stdout, and also to a rotating file when a log
// directory is configured.
func newLogger(cfg config.LogConfig) (*logging.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Dir == "" {
		return logging.New(level, os.Stdout), func() {}, nil
	}
	fw, err := logging.NewFileWriter(cfg.Dir, "hawkeye.log", 50, 5)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(level, os.Stdout, fw), func() { _ = fw.Close() }, nil
}

func newStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverS3:
		s3 := cfg.Storage.S3
		return storage.DialS3(ctx, s3.Region, s3.Bucket, s3.Prefix, cfg.Storage.UploadsDir, cfg.MaxUploadBytes())
	default:
		return storage.NewDiskStore(cfg.Storage.UploadsDir, cfg.MaxUploadBytes())
	}
}

// newAnalyzer builds the configured analyzer. getenv supplies the Gemini
// API key.
func newAnalyzer(ctx context.Context, cfg config.AnalyzerConfig, getenv func(string) string) (analyzer.Analyzer, error) {
	switch cfg.Driver {
	case config.AnalyzerGemini:
		key := analyzer.APIKeyFromEnv(getenv)
		if key == "" {
			return nil, fmt.Errorf("analyzer %q needs GEMINI_API_KEY or GOOGLE_API_KEY", cfg.Driver)
		}
		a, err := analyzer.NewGeminiAnalyzer(ctx, key, cfg.Model)
		if err != nil {
			return nil, err
		}
		a.Search = cfg.Search
		return a, nil
	default:
		return analyzer.FileAnalyzer{Path: cfg.DemoFile, Delay: cfg.DemoDelay}, nil
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	scanner, err := newAnalyzer(ctx, cfg.Analyzer, os.Getenv)
	if err != nil {
		return err
	}

	logger.Info("server", "starting", map[string]any{
		"listen":   cfg.Server.Listen,
		"storage":  cfg.Storage.Driver,
		"analyzer": cfg.Analyzer.Driver,
		"products": cfg.ProductsDir,
	})

	return server.Run(ctx, server.Options{
		Listen:         cfg.Server.Listen,
		AssetsDir:      cfg.Server.Assets,
		ProductsDir:    cfg.ProductsDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		SettleMS:       cfg.Server.SettleMS,
		AnalyzeTimeout: cfg.Analyzer.Timeout,
		Store:          store,
		Analyzer:       scanner,
		Cropper:        frames.NewCropper(frames.FFmpegExtractor{Binary: cfg.Frames.FFmpeg}, cfg.ProductsDir, cfg.Frames.Width),
		Previewer:      linkmeta.NewFetcher(nil),
		Metrics:        metrics.New(),
		Logger:         logger,
	})
}
