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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianTile/services/autotile"
	"github.com/AleutianAI/AleutianTile/services/autotile/config"
	"github.com/AleutianAI/AleutianTile/services/autotile/telemetry"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port  int
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if debug {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8095, "Port to listen on")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable gin debug mode")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	metrics, shutdown, err := a.initTelemetry(ctx)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer shutdown()

	svc, cleanup := a.newService(true, metrics)
	defer cleanup()

	if a.configPath != "" {
		watcher, err := config.NewWatcher(a.configPath, a.cfg, func(next config.Config) {
			if err := svc.SetSolverConfig(next.Solver); err != nil {
				a.logger.Warn("ignoring reloaded solver config", slog.String("error", err.Error()))
			}
		}, 0)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	router := autotile.NewRouter(svc, a.cfg.Server, a.cfg.Telemetry.ServiceName, telemetry.MetricsHandler())
	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	a.printer.Success(fmt.Sprintf("autotile listening on %s (cache: %t)", addr, svc.CacheEnabled()))
	return autotile.Serve(ctx, addr, router, a.cfg.Server, 10*time.Second)
}
