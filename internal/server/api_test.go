package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/plant-monitor/internal/models"
	"github.com/afroash/plant-monitor/internal/monitor"
)

// fakeSource serves a canned snapshot and records refresh triggers.
type fakeSource struct {
	snap      monitor.Snapshot
	refreshed int
}

func (f *fakeSource) Snapshot() monitor.Snapshot { return f.snap }
func (f *fakeSource) RefreshNow()                { f.refreshed++ }

func testSnapshot() monitor.Snapshot {
	now := time.Now()
	return monitor.Snapshot{
		Reading: models.Reading{SoilMoisture: 2067, Light: 2858},
		History: []models.HistoryPoint{
			models.NewHistoryPoint(models.Reading{SoilMoisture: 2000, Light: 2500}, now.Add(-5*time.Second)),
			models.NewHistoryPoint(models.Reading{SoilMoisture: 2067, Light: 2858}, now),
		},
		Connection: models.ConnectionState{
			IsConnected: true,
			LastUpdate:  &now,
		},
		Config: monitor.SnapshotConfig{
			Mode:                  "esp32",
			UpdateIntervalSeconds: 5,
			HistoryCapacity:       30,
			Thresholds:            models.DefaultThresholds(),
		},
	}
}

func TestHandleCurrent(t *testing.T) {
	api := NewAPIHandler(&fakeSource{snap: testSnapshot()}, zerolog.Nop())

	w := httptest.NewRecorder()
	api.HandleCurrent(w, httptest.NewRequest(http.MethodGet, "/api/current", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp CurrentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp.Reading.SoilMoisture != 2067 {
		t.Errorf("SoilMoisture = %d, want 2067", resp.Reading.SoilMoisture)
	}
	if resp.SoilCondition != models.ConditionOkay {
		t.Errorf("SoilCondition = %v, want okay", resp.SoilCondition)
	}
	if resp.LightCondition != models.ConditionOkay {
		t.Errorf("LightCondition = %v, want okay", resp.LightCondition)
	}
}

func TestHandleHistory(t *testing.T) {
	api := NewAPIHandler(&fakeSource{snap: testSnapshot()}, zerolog.Nop())

	w := httptest.NewRecorder()
	api.HandleHistory(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	var points []models.HistoryPoint
	if err := json.Unmarshal(w.Body.Bytes(), &points); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("history has %d points, want 2", len(points))
	}
	if points[1].SoilMoisture != 2067 {
		t.Errorf("newest point soil = %d, want 2067", points[1].SoilMoisture)
	}
}

func TestHandleStatus(t *testing.T) {
	api := NewAPIHandler(&fakeSource{snap: testSnapshot()}, zerolog.Nop())

	w := httptest.NewRecorder()
	api.HandleStatus(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var state models.ConnectionState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if !state.IsConnected {
		t.Error("IsConnected = false, want true")
	}
	if state.LastUpdate == nil {
		t.Error("LastUpdate missing")
	}
}

func TestHandleDashboardData(t *testing.T) {
	api := NewAPIHandler(&fakeSource{snap: testSnapshot()}, zerolog.Nop())

	w := httptest.NewRecorder()
	api.HandleDashboardData(w, httptest.NewRequest(http.MethodGet, "/api/dashboard-data", nil))

	var data DashboardData
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if data.Current.SoilCondition != models.ConditionOkay {
		t.Errorf("SoilCondition = %v, want okay", data.Current.SoilCondition)
	}
	if len(data.History) != 2 {
		t.Errorf("history has %d points, want 2", len(data.History))
	}
	if data.Config.HistoryCapacity != 30 {
		t.Errorf("HistoryCapacity = %d, want 30", data.Config.HistoryCapacity)
	}
}

func TestHandleRefresh(t *testing.T) {
	source := &fakeSource{snap: testSnapshot()}
	api := NewAPIHandler(source, zerolog.Nop())

	w := httptest.NewRecorder()
	api.HandleRefresh(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", w.Code)
	}
	if source.refreshed != 1 {
		t.Errorf("refresh count = %d, want 1", source.refreshed)
	}
}

func TestHandleRefresh_RejectsGet(t *testing.T) {
	source := &fakeSource{snap: testSnapshot()}
	api := NewAPIHandler(source, zerolog.Nop())

	w := httptest.NewRecorder()
	api.HandleRefresh(w, httptest.NewRequest(http.MethodGet, "/api/refresh", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
	if source.refreshed != 0 {
		t.Errorf("refresh count = %d, want 0", source.refreshed)
	}
}
