package scraper

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avtokat/encar-scraper/internal/config"
	"github.com/avtokat/encar-scraper/internal/models"
	"github.com/avtokat/encar-scraper/internal/translate"
)

func TestExtractListingSkipsProcessedURL(t *testing.T) {
	// No session is wired up: the dedup check must short-circuit before any
	// browser work happens.
	p := &Pipeline{
		resolver:  translate.NewResolver(nil, nil, false),
		cfg:       config.ScraperConfig{},
		logger:    slog.Default(),
		processed: make(map[string]struct{}),
	}

	url := "https://fem.encar.com/cars/detail/40647630"
	p.processed[url] = struct{}{}

	listing, err := p.ExtractListing(context.Background(), url)

	require.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Nil(t, listing)
	assert.Equal(t, 0, p.Stats().Processed, "a skipped url is not an attempt")
}

func TestExtractBatchSkipsDuplicatesSilently(t *testing.T) {
	p := &Pipeline{
		resolver:  translate.NewResolver(nil, nil, false),
		cfg:       config.ScraperConfig{},
		logger:    slog.Default(),
		processed: make(map[string]struct{}),
	}

	urls := []string{
		"https://fem.encar.com/cars/detail/1",
		"https://fem.encar.com/cars/detail/2",
	}
	for _, u := range urls {
		p.processed[u] = struct{}{}
	}

	called := 0
	listings := p.ExtractBatch(context.Background(), urls, 0, func(*models.Listing) { called++ })

	assert.Empty(t, listings)
	assert.Equal(t, 0, called)
}

func TestStatsIncludesTranslationErrors(t *testing.T) {
	resolver := translate.NewResolver(nil, nil, false)
	resolver.Errors = 4

	p := &Pipeline{
		resolver:  resolver,
		logger:    slog.Default(),
		processed: make(map[string]struct{}),
	}
	p.stats.Succeeded = 2

	stats := p.Stats()
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 4, stats.TranslationErrors)
}
