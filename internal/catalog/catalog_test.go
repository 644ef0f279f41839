package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogFixture = `
<html><body>
<p class="allcount">총 <em>12,345</em>대</p>
<table>
<tbody id="sr_normal">
  <tr data-impression="40647630|현대|아반떼"><td>row</td></tr>
  <tr data-impression="40647631|기아|K5"><td>row</td></tr>
  <tr data-impression="40647630|현대|아반떼"><td>duplicate</td></tr>
  <tr data-impression="notanid|x|y"><td>bad id</td></tr>
  <tr><td>no impression</td></tr>
</tbody>
</table>
</body></html>`

func TestParseListingLinks(t *testing.T) {
	links, err := ParseListingLinks(catalogFixture)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://fem.encar.com/cars/detail/40647630?carid=40647630",
		"https://fem.encar.com/cars/detail/40647631?carid=40647631",
	}, links)
}

func TestParseListingLinksEmptyPage(t *testing.T) {
	links, err := ParseListingLinks("<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestTotalCount(t *testing.T) {
	assert.Equal(t, 12345, TotalCount(catalogFixture))
	assert.Equal(t, 0, TotalCount("<html><body></body></html>"))
}

func TestBuildSearchURL(t *testing.T) {
	url, err := BuildSearchURL("hyundai", 3)
	require.NoError(t, err)

	assert.Contains(t, url, "www.encar.com/fc/fc_carsearchlist.do?carType=for#!")
	assert.Contains(t, url, "Manufacturer.현대.")
	assert.Contains(t, url, "%22page%22%3A3")
	assert.Contains(t, url, "%22limit%22%3A50")
	assert.Contains(t, url, "%22sort%22%3A%22ModifiedDate%22")
}

func TestBuildSearchURLCaseInsensitiveBrand(t *testing.T) {
	upper, err := BuildSearchURL("BMW", 1)
	require.NoError(t, err)
	lower, err := BuildSearchURL("bmw", 1)
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestBuildSearchURLUnknownBrand(t *testing.T) {
	_, err := BuildSearchURL("delorean", 1)
	assert.Error(t, err)
}

type fakeSource struct {
	pages     []string
	navErrs   []error
	navigated []string
	reads     int
}

func (f *fakeSource) Navigate(url string) error {
	f.navigated = append(f.navigated, url)
	idx := len(f.navigated) - 1
	if idx < len(f.navErrs) && f.navErrs[idx] != nil {
		return f.navErrs[idx]
	}
	return nil
}

func (f *fakeSource) ScrollAndContent(_ int) (string, error) {
	if f.reads >= len(f.pages) {
		return "<html></html>", nil
	}
	html := f.pages[f.reads]
	f.reads++
	return html, nil
}

func TestCollectLinksDeduplicatesAcrossPages(t *testing.T) {
	source := &fakeSource{pages: []string{
		catalogFixture,
		catalogFixture, // same rows again; second page adds nothing
	}}
	c := NewCrawler(source, 2)

	links, err := c.CollectLinks("hyundai", 1, 2)
	require.NoError(t, err)

	assert.Len(t, links, 2)
	assert.Len(t, source.navigated, 2)
}

func TestCollectLinksStopsOnEmptyPage(t *testing.T) {
	source := &fakeSource{pages: []string{
		catalogFixture,
		"<html><body></body></html>",
		catalogFixture,
	}}
	c := NewCrawler(source, 2)

	links, err := c.CollectLinks("kia", 1, 5)
	require.NoError(t, err)

	assert.Len(t, links, 2)
	assert.Len(t, source.navigated, 2, "pagination must stop after an empty page")
}

func TestCollectLinksSkipsFailedPages(t *testing.T) {
	source := &fakeSource{
		pages:   []string{catalogFixture},
		navErrs: []error{errors.New("timeout"), nil},
	}
	c := NewCrawler(source, 2)

	links, err := c.CollectLinks("bmw", 1, 2)
	require.NoError(t, err)

	assert.Len(t, links, 2, "a failed page is skipped, not fatal")
}

func TestCollectLinksUnknownBrand(t *testing.T) {
	c := NewCrawler(&fakeSource{}, 2)
	_, err := c.CollectLinks("delorean", 1, 1)
	assert.Error(t, err)
}
