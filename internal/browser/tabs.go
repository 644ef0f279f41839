package browser

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Tab is a secondary page opened from a session. The session's primary page
// stays untouched; closing the tab returns control to it. Callers must close
// the tab on every path, including failures.
type Tab struct {
	session *Session
	page    playwright.Page
	closed  bool
}

// OpenTab opens url in a new tab within the session's browser context.
func (s *Session) OpenTab(url string) (*Tab, error) {
	page, err := s.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	if err := s.browser.NavigateWithRetry(page, url, 2); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to load tab url: %w", err)
	}
	settle(s.cfg.PageLoadWait)

	return &Tab{session: s, page: page}, nil
}

// Texts returns the trimmed text of up to limit elements matching selector
// inside the tab, in DOM order. Unreadable elements are skipped.
func (t *Tab) Texts(selector string, limit int) []string {
	all, err := t.page.Locator(selector).All()
	if err != nil {
		t.session.logger.Warn("tab locator query failed", "selector", selector, "error", err)
		return nil
	}

	var texts []string
	for i, loc := range all {
		if i >= limit {
			break
		}
		text, err := loc.InnerText()
		if err != nil {
			continue
		}
		texts = append(texts, strings.TrimSpace(text))
	}
	return texts
}

// Close closes the tab. Safe to call more than once.
func (t *Tab) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.page.Close()
}

// CloseStrayTabs closes every page in the context except the session's
// primary page. Used as a cleanup pass when a tab may have leaked.
func (s *Session) CloseStrayTabs() {
	for _, page := range s.browser.Context().Pages() {
		if page == s.page {
			continue
		}
		if err := page.Close(); err != nil {
			s.logger.Warn("failed to close stray tab", "error", err)
		}
	}
}

func trimText(text string) string {
	return strings.TrimSpace(text)
}
