package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/avtokat/encar-scraper/internal/models"
)

var (
	detailIDPattern = regexp.MustCompile(`/detail/(\d+)`)
	carIDPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`carid=(\d+)`),
		regexp.MustCompile(`/detail/(\d+)`),
		regexp.MustCompile(`/(\d+)\?`),
	}
	nonDigits = regexp.MustCompile(`\D`)
)

// modalFieldSetters maps the spec-sheet labels shown in the bottom-sheet to
// listing fields. Labels the table does not know are ignored.
var modalFieldSetters = map[string]func(*models.Listing, string){
	"변속기": func(l *models.Listing, v string) { l.Transmission = v }, // transmission
	"차종":  func(l *models.Listing, v string) { l.BodyType = v },     // body type
	"색상":  func(l *models.Listing, v string) { l.Color = v },        // color
	"인승":  func(l *models.Listing, v string) { l.Seating = digitsOnly(v) },
	"배기량": func(l *models.Listing, v string) { l.Displacement = formatDisplacement(v) },
	"지역":  func(l *models.Listing, v string) { l.Region = v }, // region
}

// ListingIDFromURL pulls the numeric item id out of any of the marketplace
// URL shapes. Returns "" when no pattern matches.
func ListingIDFromURL(url string) string {
	for _, pattern := range carIDPatterns {
		if m := pattern.FindStringSubmatch(url); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// DetailURL builds the canonical detail page URL for an item id.
func DetailURL(id string) string {
	return fmt.Sprintf(detailURLFormat, id, id)
}

// extractFields reads the primary attributes from the main page and, when the
// modal is open, the spec-sheet pairs inside it.
func (p *Pipeline) extractFields(url string, modal playwright.Locator) *models.Listing {
	listing := models.NewListing()

	if m := detailIDPattern.FindStringSubmatch(url); len(m) > 1 {
		listing.ID = m[1]
	}

	listing.Brand = p.presetBrand

	listing.Model = p.session.TextBySelector(selTitleSpans, 0)

	if price := parsePrice(p.session.TextBySelector(selPrice, 0)); price != "" {
		listing.Price = price
	} else {
		p.logger.Warn("price not parseable", "id", listing.ID)
	}

	conf1 := p.session.TextBySelector(selTitleSpans, 1)
	conf2 := p.session.TextBySelector(selTitleSpans, 2)
	listing.Configuration = joinConfiguration(conf1, conf2)

	listing.Year = parseYear(p.session.TextBySelector(selSummaryItems, 0))
	listing.Mileage = digitsOnly(p.session.TextBySelector(selSummaryItems, 1))
	listing.Fuel = p.session.TextBySelector(selSummaryItems, 2)
	listing.VehNumber = p.session.TextBySelector(selSummaryItems, 3)

	if modal != nil {
		p.extractModalFields(listing, modal)
	}

	return listing
}

// extractModalFields walks the modal's list items and matches each
// title/value pair against the label table.
func (p *Pipeline) extractModalFields(listing *models.Listing, modal playwright.Locator) {
	items, err := modal.Locator(selModalItems).All()
	if err != nil {
		p.logger.Warn("failed to read modal items", "error", err)
		return
	}

	for _, item := range items {
		title := strings.ToLower(p.session.TextWithin(item, selModalTitle, 0))
		value := strings.ToLower(p.session.TextWithin(item, selModalValue, 0))
		if title == "" || value == "" {
			continue
		}

		if set, ok := modalFieldSetters[title]; ok {
			set(listing, value)
		}
	}
}

// parsePrice strips thousands separators and scales the displayed figure by
// 10,000 (the site displays prices in units of ten thousand won). A value
// that does not parse stays empty so "not found" and "0" stay distinct.
func parsePrice(text string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if clean == "" {
		return ""
	}
	n, err := strconv.Atoi(clean)
	if err != nil {
		return ""
	}
	return strconv.Itoa(n * 10000)
}

// parseYear reconstructs a 4-digit year from a 2-digit prefix.
func parseYear(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 2 {
		return ""
	}
	short, err := strconv.Atoi(text[:2])
	if err != nil {
		return ""
	}
	return strconv.Itoa(short + 2000)
}

func digitsOnly(text string) string {
	return nonDigits.ReplaceAllString(text, "")
}

// formatDisplacement renders engine displacement as liters plus cc, e.g.
// "2.0l. (1998cm³)". Input with no digits comes back unchanged.
func formatDisplacement(text string) string {
	cc := digitsOnly(text)
	if cc == "" {
		return text
	}
	n, err := strconv.Atoi(cc)
	if err != nil {
		return text
	}
	liters := float64(n) / 1000
	return fmt.Sprintf("%.1fl. (%dcm³)", liters, n)
}

func joinConfiguration(first, second string) string {
	if second != "" {
		return strings.TrimSpace(first + " " + second)
	}
	return first
}
