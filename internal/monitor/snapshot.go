package monitor

import (
	"github.com/afroash/plant-monitor/internal/models"
)

// Snapshot is the read-only view handed to the presentation layer. All
// fields are copies; mutating a snapshot never touches the monitor.
type Snapshot struct {
	Reading    models.Reading         `json:"reading"`
	History    []models.HistoryPoint  `json:"history"`
	Connection models.ConnectionState `json:"connection"`
	Config     SnapshotConfig         `json:"config"`
}

// SnapshotConfig is the slice of the effective configuration the dashboard
// needs to render and classify.
type SnapshotConfig struct {
	Mode                  string            `json:"mode"`
	UpdateIntervalSeconds int               `json:"update_interval_seconds"`
	HistoryCapacity       int               `json:"history_capacity"`
	Thresholds            models.Thresholds `json:"thresholds"`
}

// Snapshot returns the current state as one consistent view: a cycle's
// mutations are either fully visible or not at all.
func (m *Monitor) Snapshot() Snapshot {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return Snapshot{
		Reading:    m.current,
		History:    m.hist.Snapshot(),
		Connection: m.connection.Copy(),
		Config: SnapshotConfig{
			Mode:                  m.cfg.Source.Mode,
			UpdateIntervalSeconds: int(m.cfg.Source.UpdateInterval.Seconds()),
			HistoryCapacity:       m.cfg.History.Capacity,
			Thresholds:            m.cfg.Thresholds,
		},
	}
}
