// Package challenge recognizes anti-automation verification screens and
// waits for an operator to clear them out-of-band.
package challenge

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// widgetSelectors match the known verification widgets plus generic
// captcha/verify markers. Order matters only for logging.
var widgetSelectors = []string{
	// Google reCAPTCHA
	"iframe[src*='recaptcha']",
	"iframe[title*='reCAPTCHA']",
	".g-recaptcha",
	// hCaptcha
	"iframe[src*='hcaptcha']",
	".h-captcha",
	// Generic markers
	"iframe[src*='captcha']",
	".captcha-container",
	"#captcha",
	"[id*='captcha']",
	"[class*='captcha']",
	// Site-specific verification containers
	".verify-container",
	"#verify",
}

// urlMarkers flag challenge redirects by URL substring.
var urlMarkers = []string{"captcha", "verify"}

// Prober is the slice of the browser session the detector needs.
type Prober interface {
	// VisibleAny reports whether any element matching any selector is
	// visible, along with the selector that matched.
	VisibleAny(selectors []string) (bool, string)
	CurrentURL() string
}

type Detector struct {
	prober Prober
	poll   time.Duration
	logger *slog.Logger
}

func NewDetector(prober Prober, poll time.Duration) *Detector {
	return &Detector{
		prober: prober,
		poll:   poll,
		logger: slog.Default().With("component", "challenge"),
	}
}

// Present re-queries the live page on every call; a challenge that was
// present a moment ago may have been solved since.
func (d *Detector) Present() bool {
	if found, selector := d.prober.VisibleAny(widgetSelectors); found {
		d.logger.Warn("challenge widget detected", "selector", selector)
		return true
	}

	url := strings.ToLower(d.prober.CurrentURL())
	for _, marker := range urlMarkers {
		if strings.Contains(url, marker) {
			d.logger.Warn("challenge detected in url", "url", url)
			return true
		}
	}

	return false
}

// WaitForManualResolution polls until the challenge clears or timeout
// elapses. Returns true once the page is clean. The wait is cooperative:
// cancelling ctx abandons it early.
func (d *Detector) WaitForManualResolution(ctx context.Context, timeout time.Duration) bool {
	d.logger.Warn("challenge present, waiting for manual resolution", "timeout", timeout)

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		if !d.Present() {
			d.logger.Info("challenge resolved")
			return true
		}

		if time.Now().After(deadline) {
			d.logger.Error("challenge unresolved within timeout", "timeout", timeout)
			return false
		}

		select {
		case <-ctx.Done():
			d.logger.Warn("challenge wait cancelled", "error", ctx.Err())
			return false
		case <-ticker.C:
		}
	}
}
