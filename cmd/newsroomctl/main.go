// Command newsroomctl runs a single editorial meeting from the terminal
// and prints the transcript, without the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/techronicle/newsroom/internal/articles"
	"github.com/techronicle/newsroom/internal/brain"
	"github.com/techronicle/newsroom/internal/config"
	"github.com/techronicle/newsroom/internal/newsroom"
	"github.com/techronicle/newsroom/internal/persona"
	"github.com/techronicle/newsroom/internal/transcript"
)

func main() {
	var (
		sample    = flag.Bool("sample", false, "use built-in sample headlines instead of live feeds")
		maxItems  = flag.Int("max-items", 5, "maximum number of items on the slate")
		formatStr = flag.String("format", "text", "transcript format: json, markdown or text")
		mode      = flag.String("mode", "auto", "brain mode: auto, openai or mock")
		outPath   = flag.String("o", "", "write the transcript to a file instead of stdout")
		verbose   = flag.Bool("v", false, "log each turn as it is spoken")
	)
	flag.Parse()

	format, err := transcript.ParseFormat(*formatStr)
	if err != nil {
		log.Fatalf("invalid -format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	adapter, err := brain.NewAdapter(brain.Config{
		Mode:    *mode,
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
	if err != nil {
		log.Fatalf("brain adapter init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	items, err := collectItems(ctx, cfg, *sample, *maxItems)
	if err != nil {
		log.Fatalf("collect failed: %v", err)
	}
	if len(items) == 0 {
		log.Fatalf("no items to discuss")
	}
	log.Printf("slate: %d items", len(items))

	service, err := newsroom.NewService(newsroom.ServiceConfig{
		Registry:    persona.DefaultNewsroom(),
		Adapter:     adapter,
		SoftCap:     cfg.SoftCap,
		HardCap:     cfg.HardCap,
		TurnTimeout: cfg.TurnTimeout,
		Lexicon:     cfg.DecisionLexicon,
	})
	if err != nil {
		log.Fatalf("newsroom service init failed: %v", err)
	}

	run, err := service.StartSession(ctx, items)
	if err != nil {
		log.Fatalf("session start failed: %v", err)
	}
	if *verbose {
		events, cancel := run.Record.Subscribe(64)
		defer cancel()
		go func() {
			for ev := range events {
				if ev.Type == transcript.EventTurnAppended && ev.Turn != nil {
					log.Printf("[%d] %s: %s", ev.Turn.Seq, ev.Turn.Speaker, ev.Turn.Text)
				}
			}
		}()
	}

	summary, err := run.Result()
	if err != nil {
		log.Fatalf("session failed: %v", err)
	}

	rendered, err := transcript.Export(summary, format)
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}

	if strings.TrimSpace(*outPath) != "" {
		if err := os.WriteFile(*outPath, rendered, 0o644); err != nil {
			log.Fatalf("write %s: %v", *outPath, err)
		}
		log.Printf("transcript written to %s", *outPath)
	} else {
		fmt.Println(string(rendered))
	}

	for _, item := range summary.SelectedItems {
		log.Printf("approved: %s (%s)", item.Title, item.Source)
	}
	if len(summary.SelectedItems) == 0 {
		log.Printf("no items approved")
	}
}

func collectItems(ctx context.Context, cfg config.Config, sample bool, maxItems int) ([]articles.Item, error) {
	if sample {
		return articles.NewStaticSupplier(articles.SampleItems()).Collect(ctx, maxItems)
	}
	feeds := cfg.RSSFeeds
	if len(feeds) == 0 {
		feeds = articles.DefaultFeeds()
	}
	collector := articles.NewFeedCollector(feeds, &http.Client{Timeout: cfg.FeedTimeout})
	collectCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	return collector.Collect(collectCtx, maxItems)
}
