// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command concierge starts the health-tourism assistant API server.
//
// The server exposes one conversation endpoint plus profile and analytics
// reads; all heavy lifting (NLU, catalog retrieval, generation, logging)
// happens behind it.
//
// Usage:
//
//	go run ./cmd/concierge
//	CONCIERGE_PORT=9090 CONCIERGE_DEBUG=1 go run ./cmd/concierge
//
// With networked backends:
//
//	CONCIERGE_CATALOG_BACKEND=weaviate CONCIERGE_WEAVIATE_HOST=localhost:8081 \
//	CONCIERGE_SESSION_BACKEND=redis REDIS_URL=redis://localhost:6379/0 \
//	CONCIERGE_PERSISTENCE_BACKEND=mongo MONGO_URI=mongodb://localhost:27017 \
//	OLLAMA_BASE_URL=http://localhost:11434 OLLAMA_MODEL=llama3.1:8b \
//	go run ./cmd/concierge
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/health
//
//	# One conversation turn
//	curl -X POST http://localhost:8080/v1/chat \
//	  -H "Content-Type: application/json" \
//	  -d '{"message": "Antalya'\''da diş implantı yapan klinikler"}'
//
//	# Analytics over the last 30 days
//	curl 'http://localhost:8080/v1/analytics?since_days=30' | jq
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AleutianAI/concierge/services/concierge"
	"github.com/AleutianAI/concierge/services/concierge/catalog"
	"github.com/AleutianAI/concierge/services/concierge/config"
	"github.com/AleutianAI/concierge/services/concierge/convlog"
	"github.com/AleutianAI/concierge/services/concierge/session"
)

func main() {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	debug := os.Getenv("CONCIERGE_DEBUG") == "1"
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagation so inbound traceparent headers flow
	// through handlers. The stdout exporter is opt-in.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	var tp *sdktrace.TracerProvider
	if os.Getenv("CONCIERGE_TRACE_STDOUT") == "1" {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			slog.Warn("Failed to create stdout trace exporter", slog.String("error", err.Error()))
		} else {
			tp = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
			otel.SetTracerProvider(tp)
		}
	}

	backends, cleanup, err := buildBackends(cfg)
	if err != nil {
		slog.Error("Failed to initialize backends", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	svc, err := concierge.NewService(cfg, backends, logger)
	if err != nil {
		slog.Error("Failed to create service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("concierge"))
	if debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	concierge.RegisterRoutes(v1, concierge.NewHandlers(svc))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("Starting concierge server",
			slog.String("address", addr),
			slog.String("catalog_backend", cfg.Catalog.Backend),
			slog.String("session_backend", cfg.Session.Backend),
			slog.String("persistence_backend", cfg.Persistence.Backend),
			slog.String("generation_model", cfg.Generation.Model),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down concierge server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown did not finish cleanly", slog.String("error", err.Error()))
	}

	// Drain queued conversation records only after the server has stopped
	// producing new turns.
	svc.Close()
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Trace provider shutdown failed", slog.String("error", err.Error()))
		}
	}
}

// buildBackends constructs the catalog, session, and persistence backends
// selected by configuration. The returned cleanup closes any network clients.
func buildBackends(cfg *config.Config) (concierge.Backends, func(), error) {
	var backends concierge.Backends
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	switch cfg.Catalog.Backend {
	case "weaviate":
		store, err := catalog.NewWeaviateStore(cfg.Catalog.WeaviateScheme, cfg.Catalog.WeaviateHost, slog.Default())
		if err != nil {
			return backends, cleanup, fmt.Errorf("weaviate store: %w", err)
		}
		backends.Catalog = store
	case "memory", "":
		// The fixture store carries a small demo catalog so the service is
		// usable out of the box.
		backends.Catalog = catalog.NewFixtureStore()
	default:
		return backends, cleanup, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}

	switch cfg.Session.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Session.RedisURL)
		if err != nil {
			return backends, cleanup, fmt.Errorf("redis url: %w", err)
		}
		client := redis.NewClient(opts)
		closers = append(closers, func() { _ = client.Close() })
		backends.Sessions = session.NewRedisStore(client, cfg.SessionTTL())
	case "memory", "":
		backends.Sessions = session.NewMemoryStore()
	default:
		return backends, cleanup, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	switch cfg.Persistence.Backend {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(cfg.Persistence.MongoURI))
		if err != nil {
			return backends, cleanup, fmt.Errorf("mongo connect: %w", err)
		}
		closers = append(closers, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		backends.Turns = convlog.NewMongoStore(client.Database(cfg.Persistence.MongoDatabase))
	case "memory", "":
		backends.Turns = convlog.NewMemoryStore()
	default:
		return backends, cleanup, fmt.Errorf("unknown persistence backend %q", cfg.Persistence.Backend)
	}

	return backends, cleanup, nil
}
