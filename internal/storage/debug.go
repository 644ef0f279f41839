package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DebugWriter persists failure snapshots: page markup, a screenshot and a
// short text summary, named {reason}_{itemID}_{timestamp}. The bundles are
// diagnostic and disposable; they never feed back into extraction.
type DebugWriter struct {
	dir    string
	logger *slog.Logger
}

// Capture is the file set written for one snapshot. Paths are empty for
// parts that could not be written.
type Capture struct {
	URL            string
	Timestamp      time.Time
	MarkupPath     string
	ScreenshotPath string
	InfoPath       string
}

func NewDebugWriter(dir string) *DebugWriter {
	return &DebugWriter{
		dir:    dir,
		logger: slog.Default().With("component", "debug"),
	}
}

// Write stores a debug bundle. Individual file failures are logged and
// skipped; a debug capture must never break the pipeline that requested it.
func (w *DebugWriter) Write(reason, itemID, url string, markup []byte, screenshot []byte) *Capture {
	if itemID == "" {
		itemID = "unknown"
	}

	now := time.Now()
	prefix := fmt.Sprintf("%s_%s_%s", reason, itemID, now.Format("20060102_150405"))

	capture := &Capture{URL: url, Timestamp: now}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.logger.Error("failed to create debug dir", "dir", w.dir, "error", err)
		return capture
	}

	if len(markup) > 0 {
		path := filepath.Join(w.dir, prefix+".html")
		if err := os.WriteFile(path, markup, 0o644); err != nil {
			w.logger.Warn("failed to write markup snapshot", "error", err)
		} else {
			capture.MarkupPath = path
		}
	}

	if len(screenshot) > 0 {
		path := filepath.Join(w.dir, prefix+".png")
		if err := os.WriteFile(path, screenshot, 0o644); err != nil {
			w.logger.Warn("failed to write screenshot", "error", err)
		} else {
			capture.ScreenshotPath = path
		}
	}

	info := fmt.Sprintf("URL: %s\nTimestamp: %s\nReason: %s\nHTML file: %s\nScreenshot: %s\n",
		url, now.Format(time.RFC3339), reason, capture.MarkupPath, capture.ScreenshotPath)
	infoPath := filepath.Join(w.dir, prefix+"_info.txt")
	if err := os.WriteFile(infoPath, []byte(info), 0o644); err != nil {
		w.logger.Warn("failed to write info file", "error", err)
	} else {
		capture.InfoPath = infoPath
	}

	w.logger.Info("debug capture saved", "reason", reason, "id", itemID, "dir", w.dir)
	return capture
}
