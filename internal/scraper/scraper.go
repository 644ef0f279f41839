// Package scraper turns one listing URL into a validated record: navigate,
// clear the anti-automation gate, open the spec modal, read fields, photos
// and options, translate, stamp. Failures are item-scoped; a batch never
// dies because one listing went bad.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/avtokat/encar-scraper/internal/browser"
	"github.com/avtokat/encar-scraper/internal/challenge"
	"github.com/avtokat/encar-scraper/internal/config"
	"github.com/avtokat/encar-scraper/internal/models"
	"github.com/avtokat/encar-scraper/internal/storage"
	"github.com/avtokat/encar-scraper/internal/translate"
)

var (
	// ErrAlreadyProcessed marks the idempotent no-op for a URL handled
	// earlier in the same session. Not a failure.
	ErrAlreadyProcessed = errors.New("url already processed in this session")

	// ErrChallengeUnresolved means a verification screen outlived the
	// manual-resolution wait budget.
	ErrChallengeUnresolved = errors.New("challenge unresolved within wait budget")

	// ErrMissingCriticalFields means the record could not be identified
	// (no id or no model) after extraction.
	ErrMissingCriticalFields = errors.New("missing critical listing fields")
)

// Stats are cumulative counters for one session, owned by the pipeline.
type Stats struct {
	Processed         int `json:"processed"`
	Succeeded         int `json:"succeeded"`
	Failed            int `json:"failed"`
	TranslationErrors int `json:"translation_errors"`
}

// pageSession is the slice of the browser session the pipeline drives.
// Satisfied by *browser.Session; faked in tests so extraction logic can run
// without a live browser.
type pageSession interface {
	Navigate(url string) error
	CurrentURL() string
	VisibleAny(selectors []string) (bool, string)
	ClickFirstCandidate(selectors []string) bool
	WaitVisible(selector string, timeout time.Duration) (playwright.Locator, error)
	WaitPresent(selector string, timeout time.Duration) (playwright.Locator, error)
	Content() (string, error)
	Screenshot() ([]byte, error)
	TextBySelector(selector string, index int) string
	TextWithin(scope playwright.Locator, selector string, index int) string
	AttributeBySelector(selector, attr string, index int) string
	Locators(selector string) []playwright.Locator
}

// Pipeline sequences one extraction run per item over a single browser
// session. Runs are serialized; the session and its tabs are never shared
// between concurrent extractions.
type Pipeline struct {
	session     pageSession
	detector    *challenge.Detector
	resolver    *translate.Resolver
	debug       *storage.DebugWriter
	tabs        tabOpener
	cfg         config.ScraperConfig
	presetBrand string
	logger      *slog.Logger

	// runMu serializes extractions; mu guards the processed set and
	// counters so Stats never waits on a running extraction.
	runMu     sync.Mutex
	mu        sync.Mutex
	processed map[string]struct{}
	stats     Stats
}

// Option tweaks pipeline construction.
type Option func(*Pipeline)

// WithPresetBrand sets the brand stamped onto extracted listings; the detail
// page itself does not state the manufacturer reliably.
func WithPresetBrand(brand string) Option {
	return func(p *Pipeline) { p.presetBrand = brand }
}

func NewPipeline(session *browser.Session, resolver *translate.Resolver, debug *storage.DebugWriter, cfg config.ScraperConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		session:     session,
		detector:    challenge.NewDetector(session, cfg.ChallengePoll),
		resolver:    resolver,
		debug:       debug,
		tabs:        sessionTabs{session: session},
		cfg:         cfg,
		presetBrand: "Unknown brand",
		logger:      slog.Default().With("component", "pipeline"),
		processed:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stats returns a copy of the session counters. Safe to call while an
// extraction is in flight.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.TranslationErrors = p.resolver.Errors
	return s
}

func (p *Pipeline) markFailed() {
	p.mu.Lock()
	p.stats.Failed++
	p.mu.Unlock()
}

// ExtractListing runs the full pipeline for one URL. Every error it returns
// is scoped to this item; callers keep going.
func (p *Pipeline) ExtractListing(ctx context.Context, url string) (listing *models.Listing, err error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	p.mu.Lock()
	if _, seen := p.processed[url]; seen {
		p.mu.Unlock()
		p.logger.Info("url already processed, skipping", "url", url)
		return nil, ErrAlreadyProcessed
	}
	p.stats.Processed++
	p.mu.Unlock()

	defer func() {
		// The browser layer can surface driver faults as panics; convert
		// them into a per-item failure instead of killing the batch.
		if r := recover(); r != nil {
			p.logger.Error("extraction panicked", "url", url, "panic", r)
			p.captureDebug("exception", url)
			p.markFailed()
			listing = nil
			err = fmt.Errorf("extraction failed for %s: %v", url, r)
		}
	}()

	p.logger.Info("extracting listing", "url", url)

	if err := p.session.Navigate(url); err != nil {
		p.captureDebug("navigation", url)
		p.markFailed()
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	if p.detector.Present() {
		p.captureDebug("challenge", url)
		if !p.detector.WaitForManualResolution(ctx, p.cfg.ChallengeTimeout) {
			p.markFailed()
			return nil, ErrChallengeUnresolved
		}
	}

	modal := p.openDetailsModal(url)

	listing = p.extractFields(url, modal)

	if verr := listing.Validate(); verr != nil {
		p.logger.Error("missing critical listing data", "url", url, "error", verr)
		p.captureDebug("missing_critical_data", url)
		p.markFailed()
		return nil, fmt.Errorf("%w: %v", ErrMissingCriticalFields, verr)
	}

	listing.URL = url
	listing.StampParsedAt(time.Now())

	listing.Images = p.extractImages(p.cfg.MaxImages)
	listing.Options = p.extractOptions(ctx, listing.ID)

	p.resolver.TranslateFields(ctx, listing)

	p.mu.Lock()
	p.processed[url] = struct{}{}
	p.stats.Succeeded++
	p.mu.Unlock()

	p.logger.Info("listing extracted", "id", listing.ID, "model", listing.Model,
		"images", len(listing.Images), "options", listing.ActiveOptionCount())

	return listing, nil
}

// ExtractBatch runs the pipeline over urls in order, up to maxItems,
// pacing requests with the configured delay. Item failures are logged and
// skipped; successes are collected and handed to onResult when set.
func (p *Pipeline) ExtractBatch(ctx context.Context, urls []string, maxItems int, onResult func(*models.Listing)) []*models.Listing {
	if maxItems <= 0 || maxItems > len(urls) {
		maxItems = len(urls)
	}

	var listings []*models.Listing

	for i, url := range urls[:maxItems] {
		if ctx.Err() != nil {
			p.logger.Warn("batch cancelled", "done", i, "total", maxItems)
			break
		}

		p.logger.Info("batch progress", "item", i+1, "total", maxItems)

		listing, err := p.ExtractListing(ctx, url)
		if err != nil {
			if !errors.Is(err, ErrAlreadyProcessed) {
				p.logger.Error("item extraction failed", "url", url, "error", err)
			}
			continue
		}

		listings = append(listings, listing)
		if onResult != nil {
			onResult(listing)
		}

		time.Sleep(p.cfg.RequestDelay)
	}

	stats := p.Stats()
	p.logger.Info("batch finished", "processed", stats.Processed,
		"succeeded", stats.Succeeded, "failed", stats.Failed)

	return listings
}

// openDetailsModal clicks through the details-button candidates and waits
// for the bottom-sheet to become visible. Both steps are best-effort;
// extraction proceeds without modal data when either fails.
func (p *Pipeline) openDetailsModal(url string) playwright.Locator {
	if !p.session.ClickFirstCandidate(detailButtonSelectors) {
		p.logger.Warn("details button not found, continuing without modal", "url", url)
		return nil
	}

	modal, err := p.session.WaitVisible(selModalContainer, p.cfg.ElementWait)
	if err != nil {
		p.logger.Warn("details modal did not appear", "url", url, "error", err)
		// A missing modal is non-fatal but still an error path; the
		// error-only capture policy includes it.
		if p.cfg.DebugOnErrorOnly {
			p.captureDebug("modal_not_found", url)
		}
		return nil
	}

	return modal
}

// captureDebug snapshots the current page state for offline analysis.
func (p *Pipeline) captureDebug(reason, url string) {
	if p.debug == nil {
		return
	}

	itemID := ListingIDFromURL(url)

	markup, err := p.session.Content()
	if err != nil {
		p.logger.Warn("failed to read page markup for debug capture", "error", err)
	}

	screenshot, err := p.session.Screenshot()
	if err != nil {
		p.logger.Warn("failed to take screenshot for debug capture", "error", err)
	}

	p.debug.Write(reason, itemID, p.session.CurrentURL(), []byte(markup), screenshot)
}
