package models

import (
	"fmt"
	"math"
	"time"
)

// ADCMax is the top of the 12-bit ADC range both sensors report in.
const ADCMax = 4095

// Reading represents one instant's pair of raw sensor values from the
// plant device.
type Reading struct {
	SoilMoisture int `json:"soil_moisture"`
	Light        int `json:"light"`
}

// ClampADC rounds v and clamps it into the 0..4095 ADC range.
func ClampADC(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > ADCMax {
		return ADCMax
	}
	return n
}

// NewReading builds a Reading from raw values, clamping both into range.
func NewReading(soil, light float64) Reading {
	return Reading{
		SoilMoisture: ClampADC(soil),
		Light:        ClampADC(light),
	}
}

// IsValid checks that both values sit inside the ADC range.
func (r Reading) IsValid() bool {
	if r.SoilMoisture < 0 || r.SoilMoisture > ADCMax {
		return false
	}
	if r.Light < 0 || r.Light > ADCMax {
		return false
	}
	return true
}

// String returns a compact form of the reading for log messages.
func (r Reading) String() string {
	return fmt.Sprintf("soil=%d light=%d", r.SoilMoisture, r.Light)
}

// HistoryPoint is a Reading stamped for charting. DisplayTime is the short
// clock label shown on the chart axis.
type HistoryPoint struct {
	DisplayTime  string `json:"display_time"`
	TimestampMs  int64  `json:"timestamp_ms"`
	SoilMoisture int    `json:"soil_moisture"`
	Light        int    `json:"light"`
}

// NewHistoryPoint derives a chart point from a reading and its receipt time.
func NewHistoryPoint(r Reading, at time.Time) HistoryPoint {
	return HistoryPoint{
		DisplayTime:  at.Format("15:04:05"),
		TimestampMs:  at.UnixMilli(),
		SoilMoisture: r.SoilMoisture,
		Light:        r.Light,
	}
}
