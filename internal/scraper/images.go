package scraper

import (
	"strings"
)

// eagerSlideCount is how many carousel slides the page materializes with a
// real src attribute; later slides only carry their lazy-load attribute
// until scrolled into view.
const eagerSlideCount = 3

// extractImages reads photo URLs from the carousel in DOM order, capped at
// maxImages. A missing carousel yields an empty list, not a failure.
func (p *Pipeline) extractImages(maxImages int) []string {
	images := []string{}

	if _, err := p.session.WaitPresent(selSliderContainer, p.cfg.ElementWait); err != nil {
		p.logger.Warn("photo carousel not found", "error", err)
		return images
	}

	slides := p.session.Locators(selSliderImages)
	p.logger.Info("found carousel slides", "count", len(slides))

	for i := range slides {
		if len(images) >= maxImages {
			break
		}

		src := p.session.AttributeBySelector(selSliderImages, slideAttribute(i), i)
		if !validImageURL(src) {
			continue
		}
		images = append(images, cleanImageURL(src))
	}

	return images
}

// slideAttribute picks the attribute holding the slide's URL: eager slides
// populate src, lazy ones only data-src.
func slideAttribute(index int) string {
	if index < eagerSlideCount {
		return "src"
	}
	return "data-src"
}

// validImageURL accepts absolute http(s) URLs and rejects animated
// placeholders.
func validImageURL(url string) bool {
	if url == "" {
		return false
	}
	if !strings.HasPrefix(url, "http") {
		return false
	}
	if strings.HasSuffix(strings.ToLower(url), ".gif") {
		return false
	}
	return true
}

// cleanImageURL drops the centered-crop suffix the carousel appends.
func cleanImageURL(url string) string {
	if idx := strings.Index(url, "&cg=Center"); idx >= 0 {
		return url[:idx]
	}
	return url
}
