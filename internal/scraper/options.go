package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/avtokat/encar-scraper/internal/browser"
	"github.com/avtokat/encar-scraper/internal/models"
)

// optionsTab is a secondary page holding the equipment checklist.
type optionsTab interface {
	Texts(selector string, limit int) []string
	Close() error
}

// tabOpener opens and cleans up secondary tabs. Satisfied by sessionTabs in
// production and faked in tests.
type tabOpener interface {
	OpenTab(url string) (optionsTab, error)
	CloseStray()
}

// sessionTabs adapts the browser session to the tabOpener interface.
type sessionTabs struct {
	session *browser.Session
}

func (s sessionTabs) OpenTab(url string) (optionsTab, error) {
	tab, err := s.session.OpenTab(url)
	if err != nil {
		return nil, err
	}
	return tab, nil
}

func (s sessionTabs) CloseStray() {
	s.session.CloseStrayTabs()
}

// extractOptions reads the equipment checklist from the item's options
// sub-page in a secondary tab and marks matched vocabulary keys true. The
// returned map always covers the whole vocabulary; total failure of the tab
// yields the all-false map. The tab is closed and control returned to the
// primary page on every path.
func (p *Pipeline) extractOptions(ctx context.Context, itemID string) map[string]bool {
	options := models.DefaultOptions()

	url := fmt.Sprintf(optionsURLFormat, itemID)
	tab, err := p.tabs.OpenTab(url)
	if err != nil {
		p.logger.Warn("failed to open options tab", "id", itemID, "error", err)
		// The tab may half-exist after a navigation failure.
		p.tabs.CloseStray()
		return options
	}
	defer func() {
		if err := tab.Close(); err != nil {
			p.logger.Warn("failed to close options tab", "id", itemID, "error", err)
			p.tabs.CloseStray()
		}
	}()

	labels := tab.Texts(selOptionItems, p.cfg.OptionItemLimit)
	p.logger.Info("found option labels", "id", itemID, "count", len(labels))

	for _, label := range labels {
		key := normalizeOptionLabel(p.resolver.Translate(ctx, label))
		if key == "" {
			continue
		}
		if _, known := options[key]; known {
			options[key] = true
		}
	}

	return options
}

// normalizeOptionLabel converts a translated display label into vocabulary
// key form: lowercase with underscores for spaces.
func normalizeOptionLabel(label string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(label), " ", "_"))
}
