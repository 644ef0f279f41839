package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/avtokat/encar-scraper/internal/browser"
	"github.com/avtokat/encar-scraper/internal/catalog"
	"github.com/avtokat/encar-scraper/internal/config"
	"github.com/avtokat/encar-scraper/internal/database"
	"github.com/avtokat/encar-scraper/internal/models"
	"github.com/avtokat/encar-scraper/internal/scraper"
	"github.com/avtokat/encar-scraper/internal/storage"
	"github.com/avtokat/encar-scraper/internal/translate"
)

func main() {
	var (
		brand     = flag.String("brand", "", "Brand key to crawl (e.g. hyundai, bmw)")
		urls      = flag.String("urls", "", "Comma-separated listing URLs to extract instead of crawling a brand")
		startPage = flag.Int("start-page", 1, "First catalog page to read")
		maxPages  = flag.Int("max-pages", 1, "How many catalog pages to read")
		maxCars   = flag.Int("max-cars", 50, "Stop after this many listings")
		format    = flag.String("format", "json", "Output format: json or csv")
		headless  = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Browser.Headless = *headless && cfg.Browser.Headless

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *brand == "" && *urls == "" {
		fmt.Fprintln(os.Stderr, "either -brand or -urls is required")
		fmt.Fprintln(os.Stderr, "known brands:", strings.Join(brandKeys(), ", "))
		os.Exit(2)
	}
	if *brand != "" {
		if _, ok := catalog.Brands[strings.ToLower(*brand)]; !ok {
			fmt.Fprintf(os.Stderr, "unknown brand %q\nknown brands: %s\n", *brand, strings.Join(brandKeys(), ", "))
			os.Exit(2)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var cache translate.Cache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		cache = translate.NewRedisCache(redisClient)
	}

	b, err := browser.New(cfg.Browser)
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	session, err := browser.NewSession(b, cfg.Scraper)
	if err != nil {
		logger.Error("failed to open browser session", "error", err)
		os.Exit(1)
	}

	resolver := translate.NewResolver(cache,
		translate.NewGoogleService(cfg.Translation.SourceLang, cfg.Translation.TargetLang, cfg.Translation.Timeout),
		cfg.Translation.Enabled)

	opts := []scraper.Option{}
	if *brand != "" {
		opts = append(opts, scraper.WithPresetBrand(brandTitle(*brand)))
	}
	pipeline := scraper.NewPipeline(session, resolver,
		storage.NewDebugWriter(cfg.Scraper.DebugDir), cfg.Scraper, opts...)

	var links []string
	if *urls != "" {
		for _, u := range strings.Split(*urls, ",") {
			if u = strings.TrimSpace(u); u != "" {
				links = append(links, u)
			}
		}
	} else {
		crawler := catalog.NewCrawler(session, cfg.Scraper.MaxScrolls)
		links, err = crawler.CollectLinks(*brand, *startPage, *maxPages)
		if err != nil {
			logger.Error("link collection failed", "error", err)
			os.Exit(1)
		}
		logger.Info("links collected", "count", len(links))
	}

	listings := pipeline.ExtractBatch(ctx, links, *maxCars, func(listing *models.Listing) {
		if db != nil {
			if err := db.UpsertListing(ctx, listing); err != nil {
				logger.Error("failed to persist listing", "id", listing.ID, "error", err)
			}
		}
	})

	if len(listings) > 0 {
		var path string
		if *format == "csv" {
			path, err = storage.SaveCSV(listings, cfg.Scraper.OutputDir, "")
		} else {
			path, err = storage.SaveJSON(listings, cfg.Scraper.OutputDir, "")
		}
		if err != nil {
			logger.Error("failed to save results", "error", err)
			os.Exit(1)
		}
		logger.Info("results saved", "path", path, "count", len(listings))
	}

	stats := pipeline.Stats()
	logger.Info("crawl finished", "processed", stats.Processed,
		"succeeded", stats.Succeeded, "failed", stats.Failed,
		"translation_errors", stats.TranslationErrors)
}

func brandTitle(key string) string {
	key = strings.ToLower(key)
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

func brandKeys() []string {
	keys := make([]string, 0, len(catalog.Brands))
	for key := range catalog.Brands {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
