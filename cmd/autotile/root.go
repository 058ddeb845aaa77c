// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/AleutianTile/pkg/logging"
	"github.com/AleutianAI/AleutianTile/pkg/ux"
	"github.com/AleutianAI/AleutianTile/services/autotile"
	"github.com/AleutianAI/AleutianTile/services/autotile/cache"
	"github.com/AleutianAI/AleutianTile/services/autotile/config"
	"github.com/AleutianAI/AleutianTile/services/autotile/telemetry"
)

// app carries what every subcommand needs after flag parsing.
type app struct {
	configPath string
	logLevel   string
	jsonOutput bool

	cfg     config.Config
	logger  *logging.Logger
	printer *ux.Printer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "autotile",
		Short: "Constrained local-search tile-size solver",
		Long: `autotile searches integer tile sizes for accelerator kernels that fit
on-chip buffers and minimise estimated cycles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Close()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Configuration file (YAML or JSON)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false,
		"Print results as JSON")

	root.AddCommand(newSolveCmd(a), newBatchCmd(a), newServeCmd(a))
	return root
}

func (a *app) setup(stdout, stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: cfg.Telemetry.ServiceName,
		JSON:    cfg.Logging.JSON,
		Output:  stderr,
	})
	a.logger.SetDefault()
	a.printer = ux.NewPrinter(stdout, stderr)
	return nil
}

// newService builds the service with the configured cache. The returned
// cleanup closes the cache.
func (a *app) newService(useCache bool, metrics *telemetry.Metrics) (*autotile.Service, func()) {
	opts := []autotile.ServiceOption{
		autotile.WithLogger(a.logger.Slog()),
		autotile.WithMetrics(metrics),
	}
	cleanup := func() {}

	if useCache && a.cfg.Cache.Enabled {
		c, err := cache.Open(expandHome(a.cfg.Cache.Dir), a.cfg.Cache.InMemory, a.cfg.Cache.TTL, a.logger.Slog())
		if err != nil {
			// A cache is an optimisation; solve without it.
			a.logger.Warn("solution cache unavailable", slog.String("error", err.Error()))
		} else {
			opts = append(opts, autotile.WithCache(c))
			cleanup = func() { _ = c.Close() }
		}
	}

	svc := autotile.NewService(autotile.ServiceConfig{
		Solver:         a.cfg.Solver,
		MaxConcurrency: a.cfg.Service.MaxConcurrency,
		MaxBatch:       a.cfg.Server.MaxBatch,
	}, opts...)
	return svc, cleanup
}

// initTelemetry starts the configured exporters and returns the metric
// instruments with a shutdown function.
func (a *app) initTelemetry(ctx context.Context) (*telemetry.Metrics, func(), error) {
	tc := a.cfg.Telemetry
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    tc.ServiceName,
		ServiceVersion: autotile.ServiceVersion,
		TraceExporter:  tc.TraceExporter,
		MetricExporter: tc.MetricsExporter,
		OTLPEndpoint:   tc.OTLPEndpoint,
		OTLPInsecure:   true,
		SampleRate:     tc.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	metrics, err := telemetry.NewMetrics(otel.Meter(tc.ServiceName))
	if err != nil {
		_ = shutdown(ctx)
		return nil, nil, err
	}
	return metrics, func() { _ = shutdown(context.Background()) }, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
