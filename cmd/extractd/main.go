// Package main is the pactscan extraction CLI. It builds a document bundle
// from file arguments, runs the escalation pipeline and prints the final
// ExtractionResult as JSON on stdout.
//
// Usage:
//
//	extractd file.pdf[:doc_type[:label]] ...
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pactscan/pactscan/internal/bundle"
	"github.com/pactscan/pactscan/internal/cache"
	"github.com/pactscan/pactscan/internal/config"
	"github.com/pactscan/pactscan/internal/pipeline"
	"github.com/pactscan/pactscan/internal/provider/anthropic"
	"github.com/pactscan/pactscan/pkg/models"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(os.Args[1:]); err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: extractd file.pdf[:doc_type[:label]] ...")
	}

	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Env, "fast_model", cfg.AI.FastModel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Build the bundle from file arguments
	b, err := buildBundle(args)
	if err != nil {
		return err
	}

	// 3. Optional result cache
	opts := pipeline.Options{
		CacheTTL:        cfg.Cache.TTL,
		FastTimeout:     cfg.AI.FastTimeout,
		ThoroughTimeout: cfg.AI.ThoroughTimeout,
		FallbackTimeout: cfg.AI.FallbackTimeout,
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")
		opts.Cache = rc
	}

	// 4. Wire the tier clients and run the pipeline
	svc := pipeline.NewService(anthropic.NewTierSet(cfg.AI), opts)

	result, err := svc.Extract(ctx, b)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// buildBundle parses file arguments of the form path[:doc_type[:label]] and
// reads each file.
func buildBundle(args []string) (*models.DocumentBundle, error) {
	builder := bundle.NewBuilder()
	for _, arg := range args {
		path := arg
		docType := models.DocOther
		label := ""

		if idx := strings.IndexByte(arg, ':'); idx > 0 {
			path = arg[:idx]
			rest := arg[idx+1:]
			if lidx := strings.IndexByte(rest, ':'); lidx >= 0 {
				docType = models.DocumentType(rest[:lidx])
				label = rest[lidx+1:]
			} else {
				docType = models.DocumentType(rest)
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := builder.Add(path, docType, label, data); err != nil {
			return nil, fmt.Errorf("add %s: %w", path, err)
		}
	}
	return builder.Build()
}
