package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/avtokat/encar-scraper/internal/api"
	"github.com/avtokat/encar-scraper/internal/browser"
	"github.com/avtokat/encar-scraper/internal/catalog"
	"github.com/avtokat/encar-scraper/internal/config"
	"github.com/avtokat/encar-scraper/internal/database"
	"github.com/avtokat/encar-scraper/internal/jobs"
	"github.com/avtokat/encar-scraper/internal/models"
	"github.com/avtokat/encar-scraper/internal/scraper"
	"github.com/avtokat/encar-scraper/internal/storage"
	"github.com/avtokat/encar-scraper/internal/translate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional persistence; the server runs file-only without it.
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("connected to database")
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
		logger.Info("connected to redis")
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

	debug := storage.NewDebugWriter(cfg.Scraper.DebugDir)
	pipeline := scraper.NewPipeline(session, resolver, debug, cfg.Scraper)
	crawler := catalog.NewCrawler(session, cfg.Scraper.MaxScrolls)

	jobManager := jobs.NewManager(ctx, func(jctx context.Context, job jobs.Job, update func(func(*jobs.Job))) error {
		links, err := crawler.CollectLinks(job.Brand, job.StartPage, job.MaxPages)
		if err != nil {
			return fmt.Errorf("link collection failed: %w", err)
		}
		update(func(j *jobs.Job) { j.LinksFound = len(links) })

		before := pipeline.Stats()
		listings := pipeline.ExtractBatch(jctx, links, job.MaxCars, func(listing *models.Listing) {
			update(func(j *jobs.Job) { j.Succeeded++ })
			if db != nil {
				if err := db.UpsertListing(jctx, listing); err != nil {
					logger.Error("failed to persist listing", "id", listing.ID, "error", err)
				}
			}
		})
		update(func(j *jobs.Job) {
			stats := pipeline.Stats()
			j.Processed = stats.Processed - before.Processed
			j.Failed = stats.Failed - before.Failed
		})

		if len(listings) == 0 {
			return nil
		}

		path, err := storage.SaveJSON(listings, cfg.Scraper.OutputDir,
			fmt.Sprintf("%s_%s", job.Brand, job.ID))
		if err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
		update(func(j *jobs.Job) { j.OutputPath = path })
		return nil
	})

	handlers := api.NewHandlers(pipeline, jobManager, db, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", handlers.Extract)
		r.Post("/jobs", handlers.CreateJob)
		r.Get("/jobs", handlers.ListJobs)
		r.Get("/jobs/{id}", handlers.GetJob)
		r.Get("/listings/{id}", handlers.GetListing)
		r.Get("/stats", handlers.Stats)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		// Extraction is a blocking browser round trip; write timeout must
		// cover a full item including a manual challenge wait.
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr,
		"debug_dir", filepath.Clean(cfg.Scraper.DebugDir))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Level == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
