package browser

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/avtokat/encar-scraper/internal/config"
)

// Session is one logical scraping session: a primary page plus any secondary
// tabs opened from it. All interaction with the marketplace goes through
// these primitives. A session is not safe for concurrent use; the pipeline
// drives it sequentially.
type Session struct {
	browser *Browser
	page    playwright.Page
	cfg     config.ScraperConfig
	logger  *slog.Logger
}

func NewSession(b *Browser, cfg config.ScraperConfig) (*Session, error) {
	page, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open primary page: %w", err)
	}

	return &Session{
		browser: b,
		page:    page,
		cfg:     cfg,
		logger:  slog.Default().With("component", "session"),
	}, nil
}

func (s *Session) Page() playwright.Page {
	return s.page
}

// Navigate loads url on the primary page and lets it settle. The settle wait
// is jittered so request timing does not look mechanical.
func (s *Session) Navigate(url string) error {
	if err := s.browser.NavigateWithRetry(s.page, url, 3); err != nil {
		return err
	}
	settle(s.cfg.PageLoadWait)
	return nil
}

func (s *Session) CurrentURL() string {
	return s.page.URL()
}

// ScrollPage scrolls the primary page in random human-sized increments so
// lazily rendered content gets a chance to materialize.
func (s *Session) ScrollPage(maxScrolls int, pause time.Duration) {
	for i := 0; i < maxScrolls; i++ {
		height := 300 + rand.Intn(500)
		if _, err := s.page.Evaluate(fmt.Sprintf("() => window.scrollBy(0, %d)", height)); err != nil {
			s.logger.Warn("scroll failed", "error", err)
			return
		}
		settle(pause)
	}
}

// TextBySelector returns the trimmed text of the index-th element matching
// selector, or "" when the element is absent or unreadable.
func (s *Session) TextBySelector(selector string, index int) string {
	return textAt(s.page.Locator(selector), index)
}

// TextWithin reads text relative to an already-located scope element.
func (s *Session) TextWithin(scope playwright.Locator, selector string, index int) string {
	return textAt(scope.Locator(selector), index)
}

// AttributeBySelector returns an attribute of the index-th matching element,
// or "" when absent.
func (s *Session) AttributeBySelector(selector, attr string, index int) string {
	loc := s.page.Locator(selector)
	count, err := loc.Count()
	if err != nil || index >= count {
		return ""
	}
	value, err := loc.Nth(index).GetAttribute(attr)
	if err != nil {
		return ""
	}
	return value
}

// Locators returns one locator per element currently matching selector.
func (s *Session) Locators(selector string) []playwright.Locator {
	all, err := s.page.Locator(selector).All()
	if err != nil {
		s.logger.Warn("locator query failed", "selector", selector, "error", err)
		return nil
	}
	return all
}

// VisibleAny reports whether any element matching any of the selectors is
// currently visible. A visibility check that itself errors counts as a match;
// the callers treat uncertainty as presence.
func (s *Session) VisibleAny(selectors []string) (bool, string) {
	for _, selector := range selectors {
		all, err := s.page.Locator(selector).All()
		if err != nil || len(all) == 0 {
			continue
		}
		visible, err := all[0].IsVisible()
		if err != nil || visible {
			return true, selector
		}
	}
	return false, ""
}

// ClickFirstCandidate walks an ordered list of candidate selectors and tries
// a programmatic click on each visible match: scroll into view, JS click,
// short settle. The first click that goes through wins. Exhausting every
// candidate is reported as false, never as an error.
func (s *Session) ClickFirstCandidate(selectors []string) bool {
	for _, selector := range selectors {
		all, err := s.page.Locator(selector).All()
		if err != nil {
			s.logger.Warn("candidate lookup failed", "selector", selector, "error", err)
			continue
		}

		for i, loc := range all {
			visible, err := loc.IsVisible()
			if err != nil || !visible {
				continue
			}

			if err := loc.ScrollIntoViewIfNeeded(); err != nil {
				s.logger.Warn("scroll to candidate failed", "selector", selector, "index", i, "error", err)
				continue
			}
			settle(time.Second)

			// JS click is the reliable path in headless mode; a synthetic
			// pointer click can land on an overlay.
			if _, err := loc.Evaluate("el => el.click()", nil); err != nil {
				s.logger.Warn("candidate click failed", "selector", selector, "index", i, "error", err)
				continue
			}
			settle(3 * time.Second)

			s.logger.Info("clicked candidate", "selector", selector, "index", i)
			return true
		}
	}

	return false
}

// WaitVisible blocks until an element matching selector is visible, up to
// timeout. Returns the locator, or an error when the wait budget runs out.
func (s *Session) WaitVisible(selector string, timeout time.Duration) (playwright.Locator, error) {
	loc := s.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("element %q not visible within %s: %w", selector, timeout, err)
	}
	return loc, nil
}

// WaitPresent is WaitVisible without the visibility requirement.
func (s *Session) WaitPresent(selector string, timeout time.Duration) (playwright.Locator, error) {
	loc := s.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("element %q not present within %s: %w", selector, timeout, err)
	}
	return loc, nil
}

// Content returns the full rendered markup of the primary page.
func (s *Session) Content() (string, error) {
	return s.page.Content()
}

// ScrollAndContent scrolls to flush lazy content, then returns the rendered
// markup. Used by catalog discovery.
func (s *Session) ScrollAndContent(maxScrolls int) (string, error) {
	s.ScrollPage(maxScrolls, s.cfg.ScrollPause)
	return s.Content()
}

// Screenshot captures the current viewport of the primary page.
func (s *Session) Screenshot() ([]byte, error) {
	return s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

func (s *Session) Close() error {
	s.CloseStrayTabs()
	return s.page.Close()
}

func textAt(loc playwright.Locator, index int) string {
	count, err := loc.Count()
	if err != nil || index >= count {
		return ""
	}
	text, err := loc.Nth(index).InnerText()
	if err != nil {
		return ""
	}
	return trimText(text)
}

func settle(base time.Duration) {
	jitter := time.Duration(500+rand.Intn(1500)) * time.Millisecond
	time.Sleep(base + jitter)
}
