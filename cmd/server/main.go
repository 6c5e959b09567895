package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/bioexec/internal/config"
	"github.com/me/bioexec/internal/logging"
	"github.com/me/bioexec/internal/queue"
	"github.com/me/bioexec/internal/registry"
	"github.com/me/bioexec/internal/server"
	"github.com/me/bioexec/internal/store"
)

func main() {
	cfg := config.DefaultServerConfig()
	execCfg := config.DefaultExecConfig().FromEnv()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "History database path (default ~/.bioexec/bioexec.db, empty string keeps the default)")
	flag.StringVar(&cfg.ToolsFile, "tools", cfg.ToolsFile, "Tool definitions YAML (merged over built-ins)")
	flag.StringVar(&cfg.QueueURL, "queue-url", os.Getenv("BIOEXEC_QUEUE_URL"), "Remote job broker URL (or BIOEXEC_QUEUE_URL env)")
	flag.StringVar(&execCfg.ForcedMode, "execution-mode", execCfg.ForcedMode, "Force one execution strategy (native, module, lmod, singularity, docker)")
	flag.StringVar(&execCfg.PreferredModes, "preferred-modes", execCfg.PreferredModes, "Comma-separated strategy order")
	flag.StringVar(&execCfg.TempDir, "temp-dir", execCfg.TempDir, "Root for ephemeral working directories")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve history database path.
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".bioexec")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		dbPath = filepath.Join(dir, "bioexec.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("history database ready", "path", dbPath)

	// Load tool definitions.
	reg := registry.Builtin(logger)
	if cfg.ToolsFile != "" {
		if err := reg.LoadFile(cfg.ToolsFile); err != nil {
			fmt.Fprintf(os.Stderr, "load tool definitions: %v\n", err)
			os.Exit(1)
		}
	}

	serverOpts := []server.Option{server.WithStore(st)}
	if cfg.QueueURL != "" {
		serverOpts = append(serverOpts, server.WithQueueClient(queue.NewClient(cfg.QueueURL)))
		logger.Info("job broker configured", "url", cfg.QueueURL)
	}

	srv := server.New(cfg, execCfg, reg, logger, serverOpts...)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
