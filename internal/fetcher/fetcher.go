package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/plant-monitor/internal/config"
	"github.com/afroash/plant-monitor/internal/models"
)

// deviceStatusConnected is the backend's declared online flag. The backend
// applies its own staleness window (by default it declares the device
// offline once no reading arrived for 120 seconds); we trust the flag as-is
// and apply no local heuristics.
const deviceStatusConnected = "Connected"

// Result is one successful round-trip to the device backend.
type Result struct {
	Reading    models.Reading
	ReceivedAt *time.Time
	DeviceID   string
	IsOnline   bool
}

// Fetcher is the data source contract the acquisition loop polls.
type Fetcher interface {
	Fetch(ctx context.Context) (*Result, error)
}

// responseBody mirrors the backend's JSON shape. The sensor fields stay
// loosely typed so a non-numeric value can be reported per field instead of
// failing the whole decode anonymously.
type responseBody struct {
	Success      bool        `json:"success"`
	DeviceStatus string      `json:"deviceStatus"`
	Latest       *latestBody `json:"latest"`
}

type latestBody struct {
	SoilValue any    `json:"soilValue"`
	LdrValue  any    `json:"ldrValue"`
	Timestamp string `json:"timestamp"`
	DeviceID  string `json:"deviceId"`
}

// ESP32Fetcher polls the device backend over HTTP. At most one request is in
// flight at a time: a new Fetch cancels and supersedes any pending one.
type ESP32Fetcher struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	logger   zerolog.Logger

	mutex      sync.Mutex
	cancelPrev context.CancelFunc
}

// NewESP32Fetcher creates a fetcher for the configured backend endpoint.
func NewESP32Fetcher(cfg config.BackendConfig, logger zerolog.Logger) *ESP32Fetcher {
	return &ESP32Fetcher{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		// The per-request context carries the deadline.
		client: &http.Client{},
		logger: logger,
	}
}

// Fetch performs one round-trip to the backend and normalizes the payload.
func (f *ESP32Fetcher) Fetch(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	f.supersede(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return nil, &ConnError{Endpoint: f.endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			f.logger.Warn().Dur("timeout", f.timeout).Msg("Fetch timed out")
			return nil, &TimeoutError{Timeout: f.timeout}
		}
		return nil, &ConnError{Endpoint: f.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ConnError{Endpoint: f.endpoint, Status: resp.StatusCode}
	}

	var body responseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &ParseError{Reason: "body is not valid JSON", Err: err}
	}

	result, err := resultFromBody(&body)
	if err != nil {
		return nil, err
	}

	f.logger.Debug().
		Str("device_id", result.DeviceID).
		Bool("online", result.IsOnline).
		Msgf("Fetched reading: %s", result.Reading)
	return result, nil
}

// supersede cancels the previous in-flight request, if any, and records the
// new one as current.
func (f *ESP32Fetcher) supersede(cancel context.CancelFunc) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.cancelPrev != nil {
		f.cancelPrev()
	}
	f.cancelPrev = cancel
}

// resultFromBody validates the decoded payload and normalizes it into a
// Result. ValidateValues applies the same rules the websocket feed uses.
func resultFromBody(body *responseBody) (*Result, error) {
	if !body.Success || body.Latest == nil {
		return nil, &ParseError{Reason: "backend reported no data"}
	}

	reading, err := ValidateValues(body.Latest.SoilValue, body.Latest.LdrValue)
	if err != nil {
		return nil, err
	}

	var receivedAt *time.Time
	if ts, err := time.Parse(time.RFC3339, body.Latest.Timestamp); err == nil {
		receivedAt = &ts
	}

	return &Result{
		Reading:    reading,
		ReceivedAt: receivedAt,
		DeviceID:   body.Latest.DeviceID,
		IsOnline:   body.DeviceStatus == deviceStatusConnected,
	}, nil
}

// ValidateValues turns two loosely typed sensor fields into a clamped
// Reading. A field that is not a finite number is a hard ParseError naming
// that field; out-of-range numbers are clamped, not rejected.
func ValidateValues(soil, light any) (models.Reading, error) {
	soilNum, err := NumericField("soilValue", soil)
	if err != nil {
		return models.Reading{}, err
	}
	lightNum, err := NumericField("ldrValue", light)
	if err != nil {
		return models.Reading{}, err
	}
	return models.NewReading(soilNum, lightNum), nil
}

// NumericField checks that a loosely typed JSON field holds a finite number.
func NumericField(name string, v any) (float64, error) {
	n, ok := v.(float64)
	if !ok {
		return 0, &ParseError{Field: name, Reason: "not a number"}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, &ParseError{Field: name, Reason: "not a finite number"}
	}
	return n, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
