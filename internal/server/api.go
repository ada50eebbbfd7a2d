package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/afroash/plant-monitor/internal/models"
	"github.com/afroash/plant-monitor/internal/monitor"
)

// MonitorSource is the read-only contract the dashboard consumes: a state
// snapshot plus the manual refresh trigger. Everything else stays owned by
// the acquisition loop.
type MonitorSource interface {
	Snapshot() monitor.Snapshot
	RefreshNow()
}

// APIHandler serves the dashboard's JSON API over a monitor snapshot.
type APIHandler struct {
	source MonitorSource
	logger zerolog.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(source MonitorSource, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		source: source,
		logger: logger,
	}
}

// CurrentResponse pairs the current reading with its computed conditions.
// Conditions are recomputed per request, never stored.
type CurrentResponse struct {
	Reading        models.Reading   `json:"reading"`
	SoilCondition  models.Condition `json:"soil_condition"`
	LightCondition models.Condition `json:"light_condition"`
}

// DashboardData contains everything one dashboard render needs.
type DashboardData struct {
	Current    CurrentResponse        `json:"current"`
	History    []models.HistoryPoint  `json:"history"`
	Connection models.ConnectionState `json:"connection"`
	Config     monitor.SnapshotConfig `json:"config"`
}

// HandleCurrent returns the current reading with its conditions.
func (api *APIHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	snap := api.source.Snapshot()
	writeJSON(w, currentFromSnapshot(snap))
}

// HandleHistory returns the rolling history for charting.
func (api *APIHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	snap := api.source.Snapshot()
	writeJSON(w, snap.History)
}

// HandleStatus returns the connection state.
func (api *APIHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap := api.source.Snapshot()
	writeJSON(w, snap.Connection)
}

// HandleDashboardData returns combined data for one dashboard render.
func (api *APIHandler) HandleDashboardData(w http.ResponseWriter, r *http.Request) {
	snap := api.source.Snapshot()
	writeJSON(w, DashboardData{
		Current:    currentFromSnapshot(snap),
		History:    snap.History,
		Connection: snap.Connection,
		Config:     snap.Config,
	})
}

// HandleRefresh triggers an immediate fetch cycle off the periodic timer.
func (api *APIHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	api.source.RefreshNow()
	api.logger.Info().Msg("Manual refresh triggered")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "refreshing"})
}

func currentFromSnapshot(snap monitor.Snapshot) CurrentResponse {
	return CurrentResponse{
		Reading:        snap.Reading,
		SoilCondition:  models.Classify(models.KindSoilMoisture, snap.Reading.SoilMoisture, snap.Config.Thresholds),
		LightCondition: models.Classify(models.KindLight, snap.Reading.Light, snap.Config.Thresholds),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
