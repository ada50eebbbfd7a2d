package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestClampADC(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected int
	}{
		{"above range", 5000, 4095},
		{"below range", -10, 0},
		{"in range", 2067, 2067},
		{"rounds half up", 1999.5, 2000},
		{"rounds down", 1999.4, 1999},
		{"upper bound", 4095, 4095},
		{"lower bound", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampADC(tt.value); got != tt.expected {
				t.Errorf("ClampADC(%v) = %d, want %d", tt.value, got, tt.expected)
			}
		})
	}
}

func TestNewReading_Clamps(t *testing.T) {
	r := NewReading(5000, -10)

	if r.SoilMoisture != 4095 {
		t.Errorf("SoilMoisture = %d, want 4095", r.SoilMoisture)
	}
	if r.Light != 0 {
		t.Errorf("Light = %d, want 0", r.Light)
	}
	if !r.IsValid() {
		t.Error("clamped reading should be valid")
	}
}

func TestReading_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		reading  Reading
		expected bool
	}{
		{"valid reading", Reading{SoilMoisture: 2067, Light: 2858}, true},
		{"soil too high", Reading{SoilMoisture: 4096, Light: 2858}, false},
		{"light negative", Reading{SoilMoisture: 2067, Light: -1}, false},
		{"zero reading", Reading{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reading.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewHistoryPoint(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)
	r := Reading{SoilMoisture: 2067, Light: 2858}

	p := NewHistoryPoint(r, at)

	if p.DisplayTime != "09:26:53" {
		t.Errorf("DisplayTime = %q, want 09:26:53", p.DisplayTime)
	}
	if p.TimestampMs != at.UnixMilli() {
		t.Errorf("TimestampMs = %d, want %d", p.TimestampMs, at.UnixMilli())
	}
	if p.SoilMoisture != 2067 || p.Light != 2858 {
		t.Errorf("values = %d/%d, want 2067/2858", p.SoilMoisture, p.Light)
	}
}

func TestConnectionState_Copy(t *testing.T) {
	now := time.Now()
	cs := ConnectionState{IsConnected: true, LastUpdate: &now}

	cp := cs.Copy()
	if cp.LastUpdate == cs.LastUpdate {
		t.Error("Copy should not share the LastUpdate pointer")
	}
	if !cp.LastUpdate.Equal(now) {
		t.Errorf("LastUpdate = %v, want %v", cp.LastUpdate, now)
	}

	var nilState ConnectionState
	if got := nilState.Copy(); got.LastUpdate != nil {
		t.Error("Copy of zero state should keep nil LastUpdate")
	}
}

func TestConnectionState_JSONSerialization(t *testing.T) {
	cs := ConnectionState{IsConnected: false, IsChecking: true}

	data, err := json.Marshal(cs)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded["last_update"] != nil {
		t.Errorf("last_update = %v, want null", decoded["last_update"])
	}
	if _, present := decoded["error"]; present {
		t.Error("empty error should be omitted")
	}
}
