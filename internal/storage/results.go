// Package storage writes extraction results to disk (JSON array or CSV with
// a fixed column order) and persists debug capture bundles.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/avtokat/encar-scraper/internal/models"
)

// SaveJSON writes listings as an indented UTF-8 JSON array. When filename is
// empty a timestamped one is generated under dir.
func SaveJSON(listings []*models.Listing, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	if filename == "" {
		filename = fmt.Sprintf("listings_%s.json", time.Now().Format("20060102_150405"))
	}
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}

	path := filepath.Join(dir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(listings); err != nil {
		return "", fmt.Errorf("failed to encode listings: %w", err)
	}

	return path, nil
}

// SaveCSV writes listings with the fixed column order. Images are joined
// with "|"; options are serialized as the enabled keys joined with "|".
func SaveCSV(listings []*models.Listing, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	if filename == "" {
		filename = fmt.Sprintf("listings_%s.csv", time.Now().Format("20060102_150405"))
	}
	if !strings.HasSuffix(filename, ".csv") {
		filename += ".csv"
	}

	path := filepath.Join(dir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(models.CSVFieldOrder); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, listing := range listings {
		if err := w.Write(csvRow(listing)); err != nil {
			return "", fmt.Errorf("failed to write row for %s: %w", listing.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	return path, nil
}

func csvRow(l *models.Listing) []string {
	values := map[string]string{
		"id":            l.ID,
		"brand":         l.Brand,
		"model":         l.Model,
		"year":          l.Year,
		"price":         l.Price,
		"mileage":       l.Mileage,
		"fuel":          l.Fuel,
		"transmission":  l.Transmission,
		"car_type":      l.BodyType,
		"color":         l.Color,
		"seating":       l.Seating,
		"displacement":  l.Displacement,
		"configuration": l.Configuration,
		"region":        l.Region,
		"vehnumber":     l.VehNumber,
		"url":           l.URL,
		"parsed_at":     l.ParsedAt,
		"images":        strings.Join(l.Images, "|"),
		"options":       enabledOptions(l.Options),
	}

	row := make([]string, len(models.CSVFieldOrder))
	for i, field := range models.CSVFieldOrder {
		row[i] = values[field]
	}
	return row
}

func enabledOptions(options map[string]bool) string {
	var enabled []string
	for key, set := range options {
		if set {
			enabled = append(enabled, key)
		}
	}
	sort.Strings(enabled)
	return strings.Join(enabled, "|")
}
