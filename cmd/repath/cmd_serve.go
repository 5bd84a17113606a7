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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh"
	"github.com/AleutianAI/RePath/services/navmesh/meshio"
	"github.com/AleutianAI/RePath/services/navmesh/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			slog.Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}()

	svc, err := buildService(ctx, cfg, true)
	if err != nil {
		return err
	}
	go warm(ctx, svc)

	if cfg.Mesh.Watch {
		w, err := meshio.NewWatcher(cfg.Mesh.Path, reloadHandler(ctx, svc), cfg.Mesh.WatchDebounce)
		if err != nil {
			return err
		}
		w.Start(ctx)
		defer w.Stop()
		slog.Info("Watching mesh for changes", slog.String("path", cfg.Mesh.Path))
	}

	router := newRouter(svc)

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting RePath server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down RePath server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)

	if rec, err := recordRun(shutdownCtx, cfg, svc); err != nil {
		slog.Warn("Failed to record run", slog.String("error", err.Error()))
	} else {
		slog.Info("Run recorded", slog.String("id", rec.ID.String()), slog.Int64("queries", rec.Queries))
	}
	return shutdownErr
}

// newRouter builds the gin engine with tracing, metrics and navmesh routes.
func newRouter(svc *navmesh.Service) *gin.Engine {
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	if cfg.Server.Debug {
		router.Use(gin.Logger())
	}

	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	var queryMiddleware []gin.HandlerFunc
	if cfg.Server.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), max(cfg.Server.RateBurst, 1))
		queryMiddleware = append(queryMiddleware, navmesh.RateLimit(limiter))
	}

	v1 := router.Group("/v1")
	navmesh.RegisterRoutes(v1, navmesh.NewHandlers(svc), queryMiddleware...)
	return router
}

func warm(ctx context.Context, svc *navmesh.Service) {
	report, err := svc.Warm(ctx)
	if err != nil {
		slog.Warn("Cache warming stopped early", slog.String("error", err.Error()))
		return
	}
	slog.Info("Cache warm",
		slog.Int64("paths", report.Found),
		slog.Duration("duration", report.Duration),
	)
}

// reloadHandler rebuilds the graph when the mesh file changes. A mesh that
// fails to parse leaves the previous one serving.
func reloadHandler(ctx context.Context, svc *navmesh.Service) meshio.ChangeHandler {
	return func(path string) {
		g, err := meshio.Load(path, parseOptions(cfg))
		if err != nil {
			slog.Error("Mesh reload failed, keeping previous mesh",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return
		}
		if err := svc.Reload(ctx, g); err != nil {
			slog.Error("Mesh reload failed", slog.String("error", err.Error()))
			return
		}
		warm(ctx, svc)
	}
}
