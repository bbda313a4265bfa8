package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Monitor represents a pricing page being watched for changes
type Monitor struct {
	ID            int            `json:"id" db:"id"`
	URL           string         `json:"url" db:"url"`
	Name          string         `json:"name" db:"name"`
	Region        string         `json:"region" db:"region"`
	CSSHint       sql.NullString `json:"-" db:"css_hint"`
	NodeIndex     sql.NullInt64  `json:"-" db:"node_index"`
	Email         sql.NullString `json:"-" db:"email"`
	ChatWebhook   sql.NullString `json:"-" db:"chat_webhook"`
	LastCheckedAt sql.NullTime   `json:"-" db:"last_checked_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	IsActive      bool           `json:"is_active" db:"is_active"`
}

// GetCSSHint returns the selector hint, or "" when none was picked
func (m *Monitor) GetCSSHint() string {
	if m.CSSHint.Valid {
		return m.CSSHint.String
	}
	return ""
}

// GetNodeIndex returns the 1-based match index, or 0 when unset
func (m *Monitor) GetNodeIndex() int {
	if m.NodeIndex.Valid {
		return int(m.NodeIndex.Int64)
	}
	return 0
}

// GetChatWebhook returns the per-monitor webhook override, or ""
func (m *Monitor) GetChatWebhook() string {
	if m.ChatWebhook.Valid {
		return m.ChatWebhook.String
	}
	return ""
}

// GetEmail returns the per-monitor alert recipient, or ""
func (m *Monitor) GetEmail() string {
	if m.Email.Valid {
		return m.Email.String
	}
	return ""
}

// MarshalJSON renders nullable columns as plain values or null
func (m *Monitor) MarshalJSON() ([]byte, error) {
	type Alias Monitor
	return json.Marshal(&struct {
		*Alias
		CSSHint       *string    `json:"css_hint"`
		NodeIndex     *int64     `json:"node_index"`
		Email         *string    `json:"email"`
		ChatWebhook   *string    `json:"chat_webhook"`
		LastCheckedAt *time.Time `json:"last_checked_at"`
	}{
		Alias:         (*Alias)(m),
		CSSHint:       nullStringPtr(m.CSSHint),
		NodeIndex:     nullInt64Ptr(m.NodeIndex),
		Email:         nullStringPtr(m.Email),
		ChatWebhook:   nullStringPtr(m.ChatWebhook),
		LastCheckedAt: nullTimePtr(m.LastCheckedAt),
	})
}

// Snapshot is one extraction result for a monitor. Created once per check
// and immutable afterwards; diffs only ever compare a snapshot against the
// immediately preceding one for the same monitor.
type Snapshot struct {
	ID               int             `json:"id" db:"id"`
	MonitorID        int             `json:"monitor_id" db:"monitor_id"`
	HTML             string          `json:"-" db:"html"`
	TextContent      string          `json:"-" db:"text_content"`
	PriceJSON        json.RawMessage `json:"price_json" db:"price_json"`
	HTMLHash         string          `json:"html_hash" db:"html_hash"`
	TextHash         string          `json:"text_hash" db:"text_hash"`
	PricingHash      string          `json:"pricing_hash" db:"pricing_hash"`
	VisualHash       sql.NullString  `json:"-" db:"visual_hash"` // reserved, never computed
	ScreenshotSHA256 sql.NullString  `json:"-" db:"screenshot_sha256"`
	ScreenshotPath   sql.NullString  `json:"-" db:"screenshot_path"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// MarshalJSON renders nullable columns as plain values or null
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	type Alias Snapshot
	return json.Marshal(&struct {
		*Alias
		VisualHash       *string `json:"visual_hash"`
		ScreenshotSHA256 *string `json:"screenshot_sha256"`
		ScreenshotPath   *string `json:"screenshot_path"`
	}{
		Alias:            (*Alias)(s),
		VisualHash:       nullStringPtr(s.VisualHash),
		ScreenshotSHA256: nullStringPtr(s.ScreenshotSHA256),
		ScreenshotPath:   nullStringPtr(s.ScreenshotPath),
	})
}

// Change records a detected pricing change between two snapshots
type Change struct {
	ID             int             `json:"id" db:"id"`
	MonitorID      int             `json:"monitor_id" db:"monitor_id"`
	PrevSnapshotID sql.NullInt64   `json:"-" db:"prev_snapshot_id"`
	NewSnapshotID  int             `json:"new_snapshot_id" db:"new_snapshot_id"`
	Summary        string          `json:"summary" db:"summary"`
	Diff           json.RawMessage `json:"diff" db:"diff"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// MarshalJSON renders the nullable previous-snapshot id as value or null
func (c *Change) MarshalJSON() ([]byte, error) {
	type Alias Change
	return json.Marshal(&struct {
		*Alias
		PrevSnapshotID *int64 `json:"prev_snapshot_id"`
	}{
		Alias:          (*Alias)(c),
		PrevSnapshotID: nullInt64Ptr(c.PrevSnapshotID),
	})
}

// AddMonitorRequest is the payload for registering a new monitor
type AddMonitorRequest struct {
	URL         string `json:"url" validate:"required,url"`
	Name        string `json:"name"`
	Region      string `json:"region"`
	CSSHint     string `json:"css_hint"`
	NodeIndex   int    `json:"node_index"`
	Email       string `json:"email"`
	ChatWebhook string `json:"chat_webhook"`
}

func nullStringPtr(v sql.NullString) *string {
	if v.Valid {
		s := v.String
		return &s
	}
	return nil
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if v.Valid {
		n := v.Int64
		return &n
	}
	return nil
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if v.Valid {
		t := v.Time
		return &t
	}
	return nil
}
