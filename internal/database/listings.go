package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avtokat/encar-scraper/internal/models"
)

// UpsertListing writes one extracted listing, replacing any previous
// extraction of the same item.
func (db *DB) UpsertListing(ctx context.Context, l *models.Listing) error {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal images: %w", err)
	}
	options, err := json.Marshal(l.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	query := `
	INSERT INTO listings (
		id, brand, model, price, configuration, year, mileage, fuel,
		vehnumber, transmission, car_type, color, seating, displacement,
		region, url, parsed_at, images, options
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	ON CONFLICT (id) DO UPDATE SET
		brand = EXCLUDED.brand,
		model = EXCLUDED.model,
		price = EXCLUDED.price,
		configuration = EXCLUDED.configuration,
		year = EXCLUDED.year,
		mileage = EXCLUDED.mileage,
		fuel = EXCLUDED.fuel,
		vehnumber = EXCLUDED.vehnumber,
		transmission = EXCLUDED.transmission,
		car_type = EXCLUDED.car_type,
		color = EXCLUDED.color,
		seating = EXCLUDED.seating,
		displacement = EXCLUDED.displacement,
		region = EXCLUDED.region,
		url = EXCLUDED.url,
		parsed_at = EXCLUDED.parsed_at,
		images = EXCLUDED.images,
		options = EXCLUDED.options,
		updated_at = now()`

	_, err = db.pool.Exec(ctx, query,
		l.ID, l.Brand, l.Model, l.Price, l.Configuration, l.Year, l.Mileage,
		l.Fuel, l.VehNumber, l.Transmission, l.BodyType, l.Color, l.Seating,
		l.Displacement, l.Region, l.URL, l.ParsedAt, images, options)
	if err != nil {
		return fmt.Errorf("failed to upsert listing %s: %w", l.ID, err)
	}

	return nil
}

// GetListing fetches one listing by item id. Returns (nil, nil) when the
// item has never been extracted.
func (db *DB) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	query := `
	SELECT id, brand, model, price, configuration, year, mileage, fuel,
		vehnumber, transmission, car_type, color, seating, displacement,
		region, url, parsed_at, images, options
	FROM listings WHERE id = $1`

	l := models.NewListing()
	var images, options []byte

	err := db.pool.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.Brand, &l.Model, &l.Price, &l.Configuration, &l.Year,
		&l.Mileage, &l.Fuel, &l.VehNumber, &l.Transmission, &l.BodyType,
		&l.Color, &l.Seating, &l.Displacement, &l.Region, &l.URL, &l.ParsedAt,
		&images, &options)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}

	if err := json.Unmarshal(images, &l.Images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal images for %s: %w", id, err)
	}
	if err := json.Unmarshal(options, &l.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options for %s: %w", id, err)
	}

	return l, nil
}

// CountListings returns how many listings have been persisted.
func (db *DB) CountListings(ctx context.Context) (int, error) {
	var count int
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}
