package models

import "time"

// ConnectionState describes the link to the device as last observed by the
// acquisition loop. LastUpdate is the time of the most recent successful
// data receipt and is never advanced on failure.
type ConnectionState struct {
	IsConnected bool       `json:"is_connected"`
	LastUpdate  *time.Time `json:"last_update"`
	IsChecking  bool       `json:"is_checking"`
	Error       string     `json:"error,omitempty"`
}

// Copy returns a deep copy of the state so callers cannot reach back into
// the loop's own LastUpdate pointer.
func (cs ConnectionState) Copy() ConnectionState {
	out := cs
	if cs.LastUpdate != nil {
		t := *cs.LastUpdate
		out.LastUpdate = &t
	}
	return out
}
