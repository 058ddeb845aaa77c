// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package autotile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/AleutianTile/services/autotile/config"
)

// NewRouter builds the gin engine for the API.
//
// Inputs:
//
//	svc - The service.
//	server - Rate limit settings.
//	serviceName - Name reported by otelgin spans.
//	metrics - Optional Prometheus handler.
//
// Outputs:
//
//	*gin.Engine - Router with recovery, tracing, rate limiting and routes.
func NewRouter(svc *Service, server config.ServerConfig, serviceName string, metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(RateLimit(server.RateLimit, server.Burst))

	RegisterRoutes(router.Group("/v1"), NewHandlers(svc), metrics)
	return router
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func Serve(ctx context.Context, addr string, handler http.Handler, server config.ServerConfig, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  server.ReadTimeout,
		WriteTimeout: server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("autotile server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("autotile server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
