package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"assistd/internal/catalog"
	"assistd/internal/common/fsutil"
	"assistd/internal/config"
	"assistd/internal/driver"
	"assistd/internal/orchestrator"
	"assistd/internal/prompt"
	"assistd/internal/respcache"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "assistd",
		Short:         "Community assistance model daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to config file (.yaml, .json or .toml)")
	root.AddCommand(newServeCmd(), newModelsCmd(), newProbeCmd(), newTestgenCmd())
	return root
}

// loadConfig reads the optional config file and fills in defaults.
// Environment variables seed the defaults; flags override per command.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
		if v := os.Getenv("ASSISTD_ADDR"); v != "" {
			cfg.Addr = v
		}
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "~/.cache/assistd/responses"
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "~/models/gemma"
		if v := os.Getenv("ASSISTD_MODELS_DIR"); v != "" {
			cfg.ModelsDir = v
		}
	}
	if cfg.RemoteHost == "" {
		cfg.RemoteHost = "http://127.0.0.1:11434"
		if v := os.Getenv("ASSISTD_REMOTE_HOST"); v != "" {
			cfg.RemoteHost = v
		}
	}
	return cfg, nil
}

// buildOrchestrator assembles the full stack from a config.
func buildOrchestrator(cfg config.Config, log zerolog.Logger) *orchestrator.Orchestrator {
	cacheDir, err := fsutil.ExpandHome(cfg.CacheDir)
	if err != nil {
		cacheDir = cfg.CacheDir
	}
	cache := respcache.New(respcache.Options{
		Dir:      cacheDir,
		Capacity: cfg.CacheCapacity,
		TTL:      time.Duration(cfg.CacheTTLHours) * time.Hour,
		Logger:   log,
	})
	pool := driver.NewPool(cfg.DriverMode, driver.Options{
		ModelsDir:        cfg.ModelsDir,
		LoadPolicy:       cfg.LoadPolicy,
		CtxSize:          4096,
		Threads:          runtime.NumCPU(),
		RemoteHost:       cfg.RemoteHost,
		RemoteKeepAlive:  cfg.RemoteKeepAlive,
		RemoteTimeout:    time.Duration(cfg.RemoteTimeoutSeconds) * time.Second,
		DegradeThreshold: cfg.DegradeThreshold,
	})
	return orchestrator.New(orchestrator.Options{
		Selector:  catalog.NewSelector(nil),
		Cache:     cache,
		Assembler: prompt.NewAssembler(cfg.MaxImageEdgePx, cfg.MaxAudioDurationSecond),
		Drivers:   pool,
	})
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if v := os.Getenv("ASSISTD_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
