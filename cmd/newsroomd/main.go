package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/techronicle/newsroom/internal/articles"
	"github.com/techronicle/newsroom/internal/brain"
	"github.com/techronicle/newsroom/internal/config"
	"github.com/techronicle/newsroom/internal/httpapi"
	"github.com/techronicle/newsroom/internal/newsroom"
	"github.com/techronicle/newsroom/internal/observability"
	"github.com/techronicle/newsroom/internal/persona"
	"github.com/techronicle/newsroom/internal/slackpub"
	"github.com/techronicle/newsroom/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	archive, err := store.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("session store init failed: %v", err)
	}
	defer archive.Close()

	adapter, err := brain.NewAdapter(brain.Config{
		Mode:    cfg.BrainMode,
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
	if err != nil {
		log.Fatalf("brain adapter init failed: %v", err)
	}

	feeds := cfg.RSSFeeds
	if len(feeds) == 0 {
		feeds = articles.DefaultFeeds()
	}
	supplier := articles.NewFeedCollector(feeds, &http.Client{Timeout: cfg.FeedTimeout})
	log.Printf("feed collector: %d feeds", len(feeds))

	var sink newsroom.PublicationSink
	if cfg.SlackEnable && strings.TrimSpace(cfg.SlackWebhookURL) != "" {
		sink = slackpub.New(cfg.SlackWebhookURL, nil)
		log.Printf("slack publication enabled")
	}

	service, err := newsroom.NewService(newsroom.ServiceConfig{
		Registry:    persona.DefaultNewsroom(),
		Adapter:     adapter,
		Metrics:     metrics,
		Archive:     archive,
		Sink:        sink,
		SoftCap:     cfg.SoftCap,
		HardCap:     cfg.HardCap,
		TurnTimeout: cfg.TurnTimeout,
		Lexicon:     cfg.DecisionLexicon,
	})
	if err != nil {
		log.Fatalf("newsroom service init failed: %v", err)
	}

	api := httpapi.New(cfg, service, supplier, archive, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
