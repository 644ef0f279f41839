// Package catalog discovers listing URLs from the marketplace's paginated
// search results. The result pages are browser-rendered; links are parsed
// out of the rendered markup.
package catalog

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/avtokat/encar-scraper/internal/scraper"
)

// Brands maps catalog brand keys to the manufacturer names the search URL
// expects.
var Brands = map[string]string{
	"hyundai":      "현대",
	"kia":          "기아",
	"genesis":      "제네시스",
	"samsung":      "삼성",
	"ssangyong":    "쌍용",
	"renault":      "르노",
	"chevrolet":    "쉐보레",
	"peugeot":      "푸조",
	"bmw":          "BMW",
	"mercedes":     "벤츠",
	"audi":         "아우디",
	"volkswagen":   "폭스바겐",
	"toyota":       "토요타",
	"honda":        "혼다",
	"nissan":       "닛산",
	"mazda":        "마쯔다",
	"lexus":        "렉서스",
	"infiniti":     "인피니티",
	"ford":         "포드",
	"jeep":         "지프",
	"volvo":        "볼보",
	"jaguar":       "재규어",
	"landrover":    "랜드로버",
	"porsche":      "포르쉐",
	"mini":         "미니",
	"tesla":        "테슬라",
	"dongpungsokon": "동풍소콘",
}

const (
	defaultSort         = "ModifiedDate"
	defaultItemsPerPage = 50
	defaultSellType     = "일반"
	defaultCarType      = "N"

	selCatalogRows = `[id="sr_normal"] tr`
	selTotalCount  = ".allcount"
)

var (
	digitPattern  = regexp.MustCompile(`\d+`)
	numericIDOnly = regexp.MustCompile(`^\d+$`)
)

// PageSource renders one URL and hands back the resulting markup. The
// crawler scrolls to force lazy rows to materialize before reading.
type PageSource interface {
	Navigate(url string) error
	ScrollAndContent(maxScrolls int) (string, error)
}

type Crawler struct {
	source     PageSource
	maxScrolls int
	logger     *slog.Logger
}

func NewCrawler(source PageSource, maxScrolls int) *Crawler {
	return &Crawler{
		source:     source,
		maxScrolls: maxScrolls,
		logger:     slog.Default().With("component", "catalog"),
	}
}

// BuildSearchURL assembles the hash-fragment search payload the catalog
// front end expects for one brand and page. The fragment is a JSON blob
// with quotes percent-encoded the way the site's own pagination links do it.
func BuildSearchURL(brandKey string, page int) (string, error) {
	manufacturer, ok := Brands[strings.ToLower(brandKey)]
	if !ok {
		return "", fmt.Errorf("unknown brand key %q", brandKey)
	}

	fragment := fmt.Sprintf(
		"%%7B%%22action%%22%%3A%%22(And.Hidden.N._.(C.CarType.%s._.Manufacturer.%s.)_.SellType.%s.)"+
			"%%22%%2C%%22toggle%%22%%3A%%7B%%7D%%2C%%22layer%%22%%3A%%22%%22%%2C%%22"+
			"sort%%22%%3A%%22%s%%22%%2C%%22"+
			"page%%22%%3A%d%%2C%%22"+
			"limit%%22%%3A%d%%2C%%22"+
			"searchKey%%22%%3A%%22%%22%%2C%%22loginCheck%%22%%3Afalse%%7D",
		defaultCarType, manufacturer, defaultSellType, defaultSort, page, defaultItemsPerPage)

	return "https://www.encar.com/fc/fc_carsearchlist.do?carType=for#!" + fragment, nil
}

// CollectLinks walks catalog pages for a brand and returns detail URLs in
// discovery order, deduplicated, up to maxPages pages.
func (c *Crawler) CollectLinks(brandKey string, startPage, maxPages int) ([]string, error) {
	if startPage < 1 {
		startPage = 1
	}
	if maxPages < 1 {
		maxPages = 1
	}

	seen := make(map[string]struct{})
	var links []string

	for i := 0; i < maxPages; i++ {
		page := startPage + i

		searchURL, err := BuildSearchURL(brandKey, page)
		if err != nil {
			return nil, err
		}

		c.logger.Info("opening catalog page", "brand", brandKey, "page", page)
		if err := c.source.Navigate(searchURL); err != nil {
			c.logger.Warn("catalog page failed to load", "page", page, "error", err)
			continue
		}

		html, err := c.source.ScrollAndContent(c.maxScrolls)
		if err != nil {
			c.logger.Warn("failed to read catalog markup", "page", page, "error", err)
			continue
		}

		pageLinks, err := ParseListingLinks(html)
		if err != nil {
			c.logger.Warn("failed to parse catalog markup", "page", page, "error", err)
			continue
		}

		added := 0
		for _, link := range pageLinks {
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
			added++
		}

		c.logger.Info("catalog page parsed", "page", page, "found", len(pageLinks), "new", added)

		// An empty page means pagination ran out.
		if len(pageLinks) == 0 {
			break
		}
	}

	return links, nil
}

// ParseListingLinks extracts detail URLs from rendered catalog markup. Each
// result row carries a data-impression attribute whose first |-separated
// token is the item id.
func ParseListingLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog html: %w", err)
	}

	var links []string
	seen := make(map[string]struct{})

	doc.Find(selCatalogRows).Each(func(_ int, row *goquery.Selection) {
		impression, ok := row.Attr("data-impression")
		if !ok || impression == "" {
			return
		}

		id := impression
		if idx := strings.Index(impression, "|"); idx >= 0 {
			id = impression[:idx]
		}
		if !numericIDOnly.MatchString(id) {
			return
		}

		link := scraper.DetailURL(id)
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links, nil
}

// TotalCount reads the overall result count off a rendered catalog page.
// Returns 0 when the counter is missing or unparsable.
func TotalCount(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}

	text := doc.Find(selTotalCount).First().Text()
	digits := strings.Join(digitPattern.FindAllString(text, -1), "")
	if digits == "" {
		return 0
	}

	var count int
	if _, err := fmt.Sscanf(digits, "%d", &count); err != nil {
		return 0
	}
	return count
}
