package scheduler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"pricewatch/capture"
	"pricewatch/engine"
	"pricewatch/models"
	"pricewatch/notify"
	"pricewatch/repository"

	"github.com/robfig/cron/v3"
)

// CheckOutcome carries everything one check computed, whether or not
// persistence succeeded. Callers that persist independently still get the
// hashes and pricing.
type CheckOutcome struct {
	Monitor  *models.Monitor    `json:"monitor"`
	Result   engine.Result      `json:"result"`
	Snapshot *models.Snapshot   `json:"snapshot,omitempty"`
	Changed  bool               `json:"changed"`
	Diff     *engine.DiffResult `json:"diff,omitempty"`
}

// Checker runs scheduled sweeps over all active monitors: capture the page,
// extract and fingerprint its pricing, persist a snapshot, diff against the
// previous one, and fan out alerts when something changed.
type Checker struct {
	cron      *cron.Cron
	monitors  *repository.MonitorRepository
	snapshots *repository.SnapshotRepository
	changes   *repository.ChangeRepository
	capturer  *capture.Capturer
	engine    *engine.Engine
	notifier  *notify.Notifier
	schedule  string
	onStart   bool
}

func NewChecker(
	monitors *repository.MonitorRepository,
	snapshots *repository.SnapshotRepository,
	changes *repository.ChangeRepository,
	capturer *capture.Capturer,
	eng *engine.Engine,
	notifier *notify.Notifier,
	schedule string,
	onStart bool,
) *Checker {
	return &Checker{
		cron:      cron.New(cron.WithSeconds()),
		monitors:  monitors,
		snapshots: snapshots,
		changes:   changes,
		capturer:  capturer,
		engine:    eng,
		notifier:  notifier,
		schedule:  schedule,
		onStart:   onStart,
	}
}

// Start schedules the periodic sweep
func (c *Checker) Start() {
	if _, err := c.cron.AddFunc(c.schedule, c.CheckAll); err != nil {
		log.Printf("Failed to schedule checker: %v", err)
		return
	}

	if c.onStart {
		go c.CheckAll()
	}

	c.cron.Start()
	log.Printf("Checker scheduled with cron expression %q", c.schedule)
}

// Stop stops the scheduled checking
func (c *Checker) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}

// CheckAll sweeps every active monitor. One broken page never stops the
// sweep: each monitor's failure is logged and the loop moves on.
func (c *Checker) CheckAll() {
	monitors, err := c.monitors.GetActiveMonitors()
	if err != nil {
		log.Printf("Failed to get monitors: %v", err)
		return
	}

	if len(monitors) == 0 {
		log.Println("No monitors to check")
		return
	}

	log.Printf("Checking %d monitors", len(monitors))
	for i := range monitors {
		if _, err := c.CheckMonitor(&monitors[i]); err != nil {
			log.Printf("Check failed for %s: %v", monitors[i].URL, err)
		}
	}
}

// CheckMonitor runs one full check. Capture, extraction and hashing happen
// strictly before the previous-snapshot read and the diff. Two concurrent
// checks of the same monitor can both observe the same previous snapshot and
// both report the same diff; checks are not serialized per monitor.
func (c *Checker) CheckMonitor(m *models.Monitor) (*CheckOutcome, error) {
	page, err := c.capturer.Capture(m.URL)
	if err != nil {
		return nil, fmt.Errorf("capture failed: %v", err)
	}

	result := c.engine.Run(page.HTML, m.GetCSSHint(), m.GetNodeIndex(), page.Screenshot)
	outcome := &CheckOutcome{Monitor: m, Result: result}

	prev, err := c.snapshots.GetLatestSnapshot(m.ID)
	if err != nil {
		log.Printf("Failed to load previous snapshot for %s: %v", m.URL, err)
	}

	// Persistence may fail without voiding the check; the computed hashes
	// and pricing still go back to the caller.
	snap := snapshotFromResult(m.ID, result, page.ScreenshotPath)
	if _, err := c.snapshots.AddSnapshot(snap); err != nil {
		log.Printf("Failed to persist snapshot for %s: %v", m.URL, err)
	} else {
		outcome.Snapshot = snap
	}

	if err := c.monitors.TouchLastChecked(m.ID); err != nil {
		log.Printf("Failed to touch monitor %d: %v", m.ID, err)
	}

	if prev == nil {
		log.Printf("First check for %s: baseline stored", m.URL)
		return outcome, nil
	}

	if prev.PricingHash == result.PricingHash {
		log.Printf("Checked %s: no change", m.URL)
		return outcome, nil
	}

	var prevPricing engine.NormalizedPricing
	if len(prev.PriceJSON) > 0 {
		if err := json.Unmarshal(prev.PriceJSON, &prevPricing); err != nil {
			log.Printf("Previous pricing for %s is unreadable: %v", m.URL, err)
		}
	}

	diff := engine.Diff(result.Pricing, prevPricing)
	outcome.Diff = &diff
	outcome.Changed = diff.Changed()
	if !outcome.Changed {
		log.Printf("Checked %s: hashes differ but pricing unchanged", m.URL)
		return outcome, nil
	}

	log.Printf("Pricing change detected for %s", m.URL)
	c.recordAndNotify(m, prev, outcome)
	return outcome, nil
}

func (c *Checker) recordAndNotify(m *models.Monitor, prev *models.Snapshot, outcome *CheckOutcome) {
	name := m.Name
	if name == "" {
		name = m.URL
	}
	summary := fmt.Sprintf("Pricing change detected for %s", name)

	diffJSON, err := json.Marshal(outcome.Diff)
	if err != nil {
		log.Printf("Failed to encode diff for %s: %v", m.URL, err)
		diffJSON = []byte("null")
	}

	if outcome.Snapshot != nil {
		change := &models.Change{
			MonitorID:      m.ID,
			PrevSnapshotID: sql.NullInt64{Int64: int64(prev.ID), Valid: true},
			NewSnapshotID:  outcome.Snapshot.ID,
			Summary:        summary,
			Diff:           diffJSON,
		}
		if _, err := c.changes.AddChange(change); err != nil {
			log.Printf("Failed to record change for %s: %v", m.URL, err)
		}
	}

	emailBody := fmt.Sprintf(
		"<h2>%s</h2><p><a href=%q>%s</a></p><p><strong>Before:</strong> %s</p><p><strong>After:</strong> %s</p>",
		summary, m.URL, m.URL, string(prev.PriceJSON), string(mustJSON(outcome.Result.Pricing)),
	)
	if err := c.notifier.SendEmail(summary, emailBody, m.GetEmail()); err != nil {
		log.Printf("Email alert failed for %s: %v", m.URL, err)
	}
	if err := c.notifier.SendChatWebhook(summary+" -> "+m.URL, m.GetChatWebhook()); err != nil {
		log.Printf("Chat alert failed for %s: %v", m.URL, err)
	}
}

func snapshotFromResult(monitorID int, result engine.Result, screenshotPath string) *models.Snapshot {
	s := &models.Snapshot{
		MonitorID:   monitorID,
		HTML:        result.ScopedHTML,
		TextContent: result.Text,
		PriceJSON:   mustJSON(result.Pricing),
		HTMLHash:    result.HTMLHash,
		TextHash:    result.TextHash,
		PricingHash: result.PricingHash,
	}
	if result.ScreenshotSHA256 != nil {
		s.ScreenshotSHA256 = sql.NullString{String: *result.ScreenshotSHA256, Valid: true}
	}
	if screenshotPath != "" {
		s.ScreenshotPath = sql.NullString{String: screenshotPath, Valid: true}
	}
	// VisualHash stays NULL: the schema reserves it but nothing computes it.
	return s
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
