package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dexroute/config"
	"dexroute/core"
	"dexroute/core/state"
	"dexroute/observability/logging"
	"dexroute/rpc"
	"dexroute/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	env := strings.TrimSpace(os.Getenv("DEXROUTE_ENV"))
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.Setup(os.Stdout, "routerd", env, logging.ParseLevel(cfg.LogLevel))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("create data dir", "error", err)
		os.Exit(1)
	}
	store, err := storage.NewStore(filepath.Join(cfg.DataDir, "routerd.db"), nil)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ledger := state.NewLedger()
	node := core.NewNode(ledger, store, logger)

	server := rpc.NewServer(node, logger, rpc.ServerConfig{
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		AuthWindow:         time.Duration(cfg.AuthWindowSeconds) * time.Second,
	})
	if err := server.Start(cfg.ListenAddress); err != nil {
		logger.Error("http server", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
