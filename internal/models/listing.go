package models

import (
	"fmt"
	"time"
)

// ParsedAtLayout is the timestamp format stamped onto finished listings.
const ParsedAtLayout = "02/01/2006 15:04:05"

// Listing is one vehicle listing extracted from a detail page. Scalar fields
// stay empty strings when the value could not be read, so "not found" is
// distinguishable from a legitimate zero.
type Listing struct {
	ID            string          `json:"id"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	Price         string          `json:"price"`
	Configuration string          `json:"configuration"`
	Year          string          `json:"year"`
	Mileage       string          `json:"mileage"`
	Fuel          string          `json:"fuel"`
	VehNumber     string          `json:"vehnumber"`
	Transmission  string          `json:"transmission"`
	BodyType      string          `json:"car_type"`
	Color         string          `json:"color"`
	Seating       string          `json:"seating"`
	Displacement  string          `json:"displacement"`
	Region        string          `json:"region"`
	URL           string          `json:"url"`
	ParsedAt      string          `json:"parsed_at"`
	Images        []string        `json:"images"`
	Options       map[string]bool `json:"options"`
}

// NewListing returns a listing with the complete record shape: every option
// key present and false, images empty but non-nil.
func NewListing() *Listing {
	return &Listing{
		Images:  []string{},
		Options: DefaultOptions(),
	}
}

// Validate reports whether the listing carries the fields required to
// identify it. ID and model are hard requirements.
func (l *Listing) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("listing has no id")
	}
	if l.Model == "" {
		return fmt.Errorf("listing %s has no model", l.ID)
	}
	return nil
}

// StampParsedAt records the extraction time on the listing.
func (l *Listing) StampParsedAt(now time.Time) {
	l.ParsedAt = now.Format(ParsedAtLayout)
}

// ActiveOptionCount counts options that were found on the options page.
func (l *Listing) ActiveOptionCount() int {
	n := 0
	for _, set := range l.Options {
		if set {
			n++
		}
	}
	return n
}

// CSVFieldOrder is the fixed column order used by the CSV exporter.
var CSVFieldOrder = []string{
	"id",
	"brand",
	"model",
	"year",
	"price",
	"mileage",
	"fuel",
	"transmission",
	"car_type",
	"color",
	"seating",
	"displacement",
	"configuration",
	"region",
	"vehnumber",
	"url",
	"parsed_at",
	"images",
	"options",
}
