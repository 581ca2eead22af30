package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bakkerme/reddit-proxy/internal/aggregator"
	"github.com/bakkerme/reddit-proxy/internal/api"
	"github.com/bakkerme/reddit-proxy/internal/config"
	"github.com/bakkerme/reddit-proxy/internal/observability/otelx"
	"github.com/bakkerme/reddit-proxy/internal/sources/reddit"
	"github.com/bakkerme/reddit-proxy/internal/sources/reddit/impl"
)

func main() {
	env := config.LoadEnv()

	configPath := flag.String("config", env.ConfigPath, "path to proxy config document")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	slog.SetDefault(logger)

	doc, err := config.LoadDocument(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, logger, env.OTel)
	if err != nil {
		log.Fatalf("failed to initialize otel: %v", err)
	}

	baseURL := env.Reddit.BaseURL
	if baseURL == "" {
		baseURL = doc.Reddit.BaseURL
	}
	userAgent := env.Reddit.UserAgent
	if userAgent == "" {
		userAgent = doc.Reddit.UserAgent
	}

	var fetcher reddit.Fetcher
	if env.Reddit.HasCredentials() {
		logger.Info("Using authenticated reddit fetcher", slog.String("client_id", env.Reddit.ClientID))
		fetcher = reddit.NewAuthedFetcher(
			logger,
			env.Reddit.HTTPTimeout,
			userAgent,
			env.Reddit.ClientID,
			env.Reddit.ClientSecret,
			env.Reddit.Username,
			env.Reddit.Password,
		)
	} else {
		logger.Info("Using anonymous listing fetcher")
		fetcher = impl.NewFetcher(logger, env.Reddit.HTTPTimeout, userAgent, baseURL)
	}

	server := api.NewServer(logger, aggregator.New(fetcher, logger), doc.Defaults)

	port := env.Port
	if port == "" {
		port = doc.Server.Port
	}
	addr := net.JoinHostPort(doc.Server.Host, port)

	go func() {
		logger.Info("Starting reddit proxy", slog.String("addr", addr))
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}
	if otelShutdown != nil {
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Error("otel shutdown failed", slog.String("error", err.Error()))
		}
	}
}
