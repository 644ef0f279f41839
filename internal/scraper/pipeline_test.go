package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avtokat/encar-scraper/internal/challenge"
	"github.com/avtokat/encar-scraper/internal/config"
	"github.com/avtokat/encar-scraper/internal/storage"
	"github.com/avtokat/encar-scraper/internal/translate"
)

// fakeSession drives the pipeline without a browser. Zero values mean "page
// with nothing on it": empty texts, no visible elements, waits fail.
type fakeSession struct {
	navigate       func(url string) error
	clickResult    bool
	waitVisibleErr error
	slideCount     int
	attrs          map[string]string // "attr:index" -> value
	requestedAttrs []string
	content        string
	currentURL     string
}

func (f *fakeSession) Navigate(url string) error {
	if f.navigate != nil {
		return f.navigate(url)
	}
	return nil
}

func (f *fakeSession) CurrentURL() string { return f.currentURL }

func (f *fakeSession) VisibleAny([]string) (bool, string) { return false, "" }

func (f *fakeSession) ClickFirstCandidate([]string) bool { return f.clickResult }

func (f *fakeSession) WaitVisible(string, time.Duration) (playwright.Locator, error) {
	if f.waitVisibleErr != nil {
		return nil, f.waitVisibleErr
	}
	return nil, errors.New("not wired")
}

func (f *fakeSession) WaitPresent(string, time.Duration) (playwright.Locator, error) {
	if f.slideCount == 0 {
		return nil, errors.New("not present")
	}
	return nil, nil
}

func (f *fakeSession) Content() (string, error) { return f.content, nil }

func (f *fakeSession) Screenshot() ([]byte, error) { return nil, errors.New("no screenshot") }

func (f *fakeSession) TextBySelector(string, int) string { return "" }

func (f *fakeSession) TextWithin(playwright.Locator, string, int) string { return "" }

func (f *fakeSession) AttributeBySelector(_ string, attr string, index int) string {
	key := fmt.Sprintf("%s:%d", attr, index)
	f.requestedAttrs = append(f.requestedAttrs, key)
	return f.attrs[key]
}

func (f *fakeSession) Locators(string) []playwright.Locator {
	return make([]playwright.Locator, f.slideCount)
}

func debugFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestOpenDetailsModalCapturesAbsenceUnderErrorOnlyPolicy(t *testing.T) {
	dir := t.TempDir()
	session := &fakeSession{
		clickResult:    true,
		waitVisibleErr: errors.New("timed out"),
		content:        "<html></html>",
		currentURL:     "https://fem.encar.com/cars/detail/40647630",
	}
	p := &Pipeline{
		session: session,
		debug:   storage.NewDebugWriter(dir),
		cfg:     config.ScraperConfig{DebugOnErrorOnly: true},
		logger:  slog.Default(),
	}

	modal := p.openDetailsModal("https://fem.encar.com/cars/detail/40647630")
	assert.Nil(t, modal)

	files := debugFiles(t, dir)
	require.NotEmpty(t, files, "modal absence must be captured under the default policy")
	for _, name := range files {
		assert.True(t, strings.HasPrefix(name, "modal_not_found_40647630_"), "unexpected file %s", name)
	}
}

func TestOpenDetailsModalSkipsCaptureWhenPolicyOff(t *testing.T) {
	dir := t.TempDir()
	session := &fakeSession{
		clickResult:    true,
		waitVisibleErr: errors.New("timed out"),
	}
	p := &Pipeline{
		session: session,
		debug:   storage.NewDebugWriter(dir),
		cfg:     config.ScraperConfig{DebugOnErrorOnly: false},
		logger:  slog.Default(),
	}

	p.openDetailsModal("https://fem.encar.com/cars/detail/40647630")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractImagesCapAndOrder(t *testing.T) {
	session := &fakeSession{
		slideCount: 15,
		attrs:      map[string]string{},
	}
	// Eager slides carry src, lazy ones data-src. Slide 1 is an animated
	// placeholder, slide 4 is a relative path, slide 6 is empty; the rest
	// are valid, some with the centered-crop suffix.
	for i := 0; i < 15; i++ {
		attr := "src"
		if i >= 3 {
			attr = "data-src"
		}
		session.attrs[fmt.Sprintf("%s:%d", attr, i)] = fmt.Sprintf("https://img.encar.com/%d.jpg&cg=Center", i)
	}
	session.attrs["src:1"] = "https://img.encar.com/loading.gif"
	session.attrs["data-src:4"] = "/carpicture/4.jpg"
	session.attrs["data-src:6"] = ""

	p := &Pipeline{
		session: session,
		cfg:     config.ScraperConfig{ElementWait: time.Millisecond},
		logger:  slog.Default(),
	}

	images := p.extractImages(10)

	// 12 valid slides, capped at 10, in DOM order.
	assert.Equal(t, []string{
		"https://img.encar.com/0.jpg",
		"https://img.encar.com/2.jpg",
		"https://img.encar.com/3.jpg",
		"https://img.encar.com/5.jpg",
		"https://img.encar.com/7.jpg",
		"https://img.encar.com/8.jpg",
		"https://img.encar.com/9.jpg",
		"https://img.encar.com/10.jpg",
		"https://img.encar.com/11.jpg",
		"https://img.encar.com/12.jpg",
	}, images)

	// The first three slides are read through src, the rest through data-src.
	assert.Contains(t, session.requestedAttrs, "src:0")
	assert.Contains(t, session.requestedAttrs, "src:2")
	assert.Contains(t, session.requestedAttrs, "data-src:3")
	assert.NotContains(t, session.requestedAttrs, "src:3")
}

func TestExtractImagesMissingCarousel(t *testing.T) {
	p := &Pipeline{
		session: &fakeSession{slideCount: 0},
		cfg:     config.ScraperConfig{ElementWait: time.Millisecond},
		logger:  slog.Default(),
	}

	images := p.extractImages(10)
	require.NotNil(t, images)
	assert.Empty(t, images)
}

func TestStatsDoesNotBlockDuringExtraction(t *testing.T) {
	release := make(chan struct{})
	session := &fakeSession{
		navigate: func(string) error {
			<-release
			return nil
		},
		waitVisibleErr: errors.New("timed out"),
	}

	p := &Pipeline{
		session:   session,
		detector:  challenge.NewDetector(session, time.Millisecond),
		resolver:  translate.NewResolver(nil, nil, false),
		cfg:       config.ScraperConfig{},
		logger:    slog.Default(),
		processed: make(map[string]struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := p.ExtractListing(context.Background(), "https://fem.encar.com/cars/detail/40647630")
		done <- err
	}()

	// The counters must be readable while the extraction hangs in the
	// browser layer.
	deadline := time.Now().Add(2 * time.Second)
	for p.Stats().Processed != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Stats blocked or never saw the in-flight extraction")
		}
		time.Sleep(time.Millisecond)
	}

	close(release)

	err := <-done
	require.ErrorIs(t, err, ErrMissingCriticalFields, "empty page yields no id/model")
	assert.Equal(t, 1, p.Stats().Failed)
}
