package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricewatch/models"
)

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// AddSnapshot stores one extraction result. Snapshots are immutable once
// written.
func (r *SnapshotRepository) AddSnapshot(s *models.Snapshot) (*models.Snapshot, error) {
	query := `
		INSERT INTO snapshots (monitor_id, html, text_content, price_json, html_hash, text_hash, pricing_hash, visual_hash, screenshot_sha256, screenshot_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(query,
		s.MonitorID, s.HTML, s.TextContent, []byte(s.PriceJSON),
		s.HTMLHash, s.TextHash, s.PricingHash,
		s.VisualHash, s.ScreenshotSHA256, s.ScreenshotPath, time.Now(),
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add snapshot: %v", err)
	}

	return s, nil
}

// GetLatestSnapshot returns the most recent snapshot for a monitor, or nil
// when the monitor has never been checked
func (r *SnapshotRepository) GetLatestSnapshot(monitorID int) (*models.Snapshot, error) {
	query := `
		SELECT id, monitor_id, html, text_content, price_json, html_hash, text_hash, pricing_hash, visual_hash, screenshot_sha256, screenshot_path, created_at
		FROM snapshots
		WHERE monitor_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var s models.Snapshot
	var priceJSON []byte
	err := r.db.QueryRow(query, monitorID).Scan(
		&s.ID, &s.MonitorID, &s.HTML, &s.TextContent, &priceJSON,
		&s.HTMLHash, &s.TextHash, &s.PricingHash,
		&s.VisualHash, &s.ScreenshotSHA256, &s.ScreenshotPath, &s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %v", err)
	}
	s.PriceJSON = priceJSON

	return &s, nil
}

// GetSnapshots returns the most recent snapshots for a monitor, newest first
func (r *SnapshotRepository) GetSnapshots(monitorID, limit int) ([]models.Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, monitor_id, html, text_content, price_json, html_hash, text_hash, pricing_hash, visual_hash, screenshot_sha256, screenshot_path, created_at
		FROM snapshots
		WHERE monitor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, monitorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots: %v", err)
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		var priceJSON []byte
		err := rows.Scan(
			&s.ID, &s.MonitorID, &s.HTML, &s.TextContent, &priceJSON,
			&s.HTMLHash, &s.TextHash, &s.PricingHash,
			&s.VisualHash, &s.ScreenshotSHA256, &s.ScreenshotPath, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %v", err)
		}
		s.PriceJSON = priceJSON
		snapshots = append(snapshots, s)
	}

	return snapshots, nil
}
