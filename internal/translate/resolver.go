// Package translate turns source-language phrases into English, best-effort.
// Lookup order: already-English heuristic, phrase cache, external service.
// A failure at any stage degrades to the original text; nothing here returns
// an error to the extraction pipeline.
package translate

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/avtokat/encar-scraper/internal/models"
)

// Service is an external translation backend. It may fail or time out.
type Service interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Cache is a read-mostly phrase cache consulted before any service call.
type Cache interface {
	Get(ctx context.Context, phrase string) (string, bool)
	Set(ctx context.Context, phrase, translation string)
}

type Resolver struct {
	cache   Cache
	service Service
	enabled bool
	logger  *slog.Logger

	// Errors counts failed service calls; exposed for batch statistics.
	Errors int
}

func NewResolver(cache Cache, service Service, enabled bool) *Resolver {
	if cache == nil {
		cache = NewMemoryCache(nil)
	}
	return &Resolver{
		cache:   cache,
		service: service,
		enabled: enabled,
		logger:  slog.Default().With("component", "translate"),
	}
}

// Translate resolves text to English. Blank input yields "". Text that is
// already Latin-dominant passes through unchanged, which also covers purely
// numeric or symbolic strings.
func (r *Resolver) Translate(ctx context.Context, text string) string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return ""
	}

	if !r.enabled || isEnglish(clean) {
		return clean
	}

	if cached, ok := r.cache.Get(ctx, clean); ok {
		return cached
	}

	if r.service == nil {
		return clean
	}

	translated, err := r.service.Translate(ctx, clean)
	if err != nil {
		r.Errors++
		r.logger.Warn("translation failed, keeping original", "text", clean, "error", err)
		return clean
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		r.logger.Warn("empty translation, keeping original", "text", clean)
		return clean
	}

	r.cache.Set(ctx, clean, translated)
	return translated
}

// TranslateFields applies the resolver to every translatable field of a
// listing in place. Untranslatable numerics (price, year, mileage) and
// identifiers are left alone.
func (r *Resolver) TranslateFields(ctx context.Context, listing *models.Listing) {
	fields := []*string{
		&listing.Brand,
		&listing.Model,
		&listing.Configuration,
		&listing.Fuel,
		&listing.VehNumber,
		&listing.Transmission,
		&listing.BodyType,
		&listing.Color,
		&listing.Seating,
		&listing.Displacement,
		&listing.Region,
	}

	for _, field := range fields {
		if *field != "" {
			*field = r.Translate(ctx, *field)
		}
	}
}

// isEnglish reports whether the ratio of ASCII letters to all letters
// exceeds 0.7. A string with no letters at all counts as English; there is
// nothing to translate in it.
func isEnglish(text string) bool {
	var latin, total int
	for _, r := range text {
		if unicode.IsLetter(r) {
			total++
			if r < 128 {
				latin++
			}
		}
	}

	if total == 0 {
		return true
	}

	return float64(latin)/float64(total) > 0.7
}
