package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"pricewatch/models"
	"pricewatch/repository"
	"pricewatch/scheduler"

	"github.com/gorilla/mux"
)

type Handlers struct {
	monitors  *repository.MonitorRepository
	snapshots *repository.SnapshotRepository
	changes   *repository.ChangeRepository
	checker   *scheduler.Checker
}

func NewHandlers(
	monitors *repository.MonitorRepository,
	snapshots *repository.SnapshotRepository,
	changes *repository.ChangeRepository,
	checker *scheduler.Checker,
) *Handlers {
	return &Handlers{
		monitors:  monitors,
		snapshots: snapshots,
		changes:   changes,
		checker:   checker,
	}
}

// AddMonitor registers a new pricing page to watch
func (h *Handlers) AddMonitor(w http.ResponseWriter, r *http.Request) {
	var req models.AddMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" || (!strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://")) {
		writeError(w, http.StatusBadRequest, "A valid http(s) URL is required")
		return
	}
	if req.NodeIndex < 0 {
		req.NodeIndex = 0
	}

	monitor, err := h.monitors.AddMonitor(&req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, monitor)
}

// GetMonitors returns all active monitors
func (h *Handlers) GetMonitors(w http.ResponseWriter, r *http.Request) {
	monitors, err := h.monitors.GetActiveMonitors()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, monitors)
}

// GetMonitor returns one monitor with its latest snapshot
func (h *Handlers) GetMonitor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	monitor, err := h.monitors.GetMonitorByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	latest, err := h.snapshots.GetLatestSnapshot(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"monitor":         monitor,
		"latest_snapshot": latest,
	})
}

// DeleteMonitor deactivates a monitor
func (h *Handlers) DeleteMonitor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.monitors.DeleteMonitor(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CheckNow runs a full check for one monitor synchronously and returns the
// outcome, including the diff when the page changed
func (h *Handlers) CheckNow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	monitor, err := h.monitors.GetMonitorByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	outcome, err := h.checker.CheckMonitor(monitor)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// GetChanges returns the recorded pricing changes for a monitor
func (h *Handlers) GetChanges(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	changes, err := h.changes.GetChanges(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

// GetSnapshots returns recent snapshots for a monitor
func (h *Handlers) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	snapshots, err := h.snapshots.GetSnapshots(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid monitor id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
