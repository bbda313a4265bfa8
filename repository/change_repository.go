package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricewatch/models"
)

type ChangeRepository struct {
	db *sql.DB
}

func NewChangeRepository(db *sql.DB) *ChangeRepository {
	return &ChangeRepository{db: db}
}

// AddChange records a detected pricing change
func (r *ChangeRepository) AddChange(c *models.Change) (*models.Change, error) {
	query := `
		INSERT INTO changes (monitor_id, prev_snapshot_id, new_snapshot_id, summary, diff, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(query,
		c.MonitorID, c.PrevSnapshotID, c.NewSnapshotID, c.Summary, []byte(c.Diff), time.Now(),
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add change: %v", err)
	}

	return c, nil
}

// GetChanges returns the recorded changes for a monitor, newest first
func (r *ChangeRepository) GetChanges(monitorID, limit int) ([]models.Change, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, monitor_id, prev_snapshot_id, new_snapshot_id, summary, diff, created_at
		FROM changes
		WHERE monitor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, monitorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get changes: %v", err)
	}
	defer rows.Close()

	var changes []models.Change
	for rows.Next() {
		var c models.Change
		var diff []byte
		err := rows.Scan(
			&c.ID, &c.MonitorID, &c.PrevSnapshotID, &c.NewSnapshotID,
			&c.Summary, &diff, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change: %v", err)
		}
		c.Diff = diff
		changes = append(changes, c)
	}

	return changes, nil
}
