package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricewatch/models"
)

type MonitorRepository struct {
	db *sql.DB
}

func NewMonitorRepository(db *sql.DB) *MonitorRepository {
	return &MonitorRepository{db: db}
}

// AddMonitor registers a new pricing page to watch
func (r *MonitorRepository) AddMonitor(req *models.AddMonitorRequest) (*models.Monitor, error) {
	query := `
		INSERT INTO monitors (url, name, region, css_hint, node_index, email, chat_webhook, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, 0), NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING id, url, name, region, css_hint, node_index, email, chat_webhook, last_checked_at, created_at, is_active
	`

	region := req.Region
	if region == "" {
		region = "us"
	}

	var m models.Monitor
	err := r.db.QueryRow(query, req.URL, req.Name, region, req.CSSHint, req.NodeIndex, req.Email, req.ChatWebhook, time.Now()).Scan(
		&m.ID, &m.URL, &m.Name, &m.Region,
		&m.CSSHint, &m.NodeIndex, &m.Email, &m.ChatWebhook,
		&m.LastCheckedAt, &m.CreatedAt, &m.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add monitor: %v", err)
	}

	return &m, nil
}

// GetActiveMonitors returns all monitors currently being checked
func (r *MonitorRepository) GetActiveMonitors() ([]models.Monitor, error) {
	query := `
		SELECT id, url, name, region, css_hint, node_index, email, chat_webhook, last_checked_at, created_at, is_active
		FROM monitors
		WHERE is_active = true
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get monitors: %v", err)
	}
	defer rows.Close()

	var monitors []models.Monitor
	for rows.Next() {
		var m models.Monitor
		err := rows.Scan(
			&m.ID, &m.URL, &m.Name, &m.Region,
			&m.CSSHint, &m.NodeIndex, &m.Email, &m.ChatWebhook,
			&m.LastCheckedAt, &m.CreatedAt, &m.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monitor: %v", err)
		}
		monitors = append(monitors, m)
	}

	return monitors, nil
}

// GetMonitorByID returns an active monitor by ID
func (r *MonitorRepository) GetMonitorByID(id int) (*models.Monitor, error) {
	query := `
		SELECT id, url, name, region, css_hint, node_index, email, chat_webhook, last_checked_at, created_at, is_active
		FROM monitors
		WHERE id = $1 AND is_active = true
	`

	var m models.Monitor
	err := r.db.QueryRow(query, id).Scan(
		&m.ID, &m.URL, &m.Name, &m.Region,
		&m.CSSHint, &m.NodeIndex, &m.Email, &m.ChatWebhook,
		&m.LastCheckedAt, &m.CreatedAt, &m.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("monitor not found")
		}
		return nil, fmt.Errorf("failed to get monitor: %v", err)
	}

	return &m, nil
}

// DeleteMonitor deactivates a monitor
func (r *MonitorRepository) DeleteMonitor(id int) error {
	query := `UPDATE monitors SET is_active = false WHERE id = $1`
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete monitor: %v", err)
	}
	return nil
}

// TouchLastChecked records that a check just completed
func (r *MonitorRepository) TouchLastChecked(id int) error {
	query := `UPDATE monitors SET last_checked_at = $2 WHERE id = $1`
	if _, err := r.db.Exec(query, id, time.Now()); err != nil {
		return fmt.Errorf("failed to update last_checked_at: %v", err)
	}
	return nil
}
