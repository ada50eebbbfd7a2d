package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/plant-monitor/internal/config"
	"github.com/afroash/plant-monitor/internal/fetcher"
	"github.com/afroash/plant-monitor/internal/history"
	"github.com/afroash/plant-monitor/internal/mock"
	"github.com/afroash/plant-monitor/internal/models"
)

// seedHistoryCount is how many synthetic points seed the chart when the
// very first fetch ever attempted fails.
const seedHistoryCount = 10

// offlineMessage surfaces in ConnectionState.Error when the HTTP call
// succeeded but the backend declared the device offline.
const offlineMessage = "device offline: backend has no recent data from it"

// Monitor is the acquisition loop. It owns the current reading, the rolling
// history, and the connection state; it drives periodic and manual fetches
// and reconciles their outcomes into a stable view for the dashboard.
//
// Each cycle takes the next generation number; a cycle's result is applied
// only while it is still the newest generation and the monitor is running,
// so a slow fetch can never overwrite newer data and nothing mutates after
// Stop.
type Monitor struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	gen     *mock.Generator
	hist    *history.Buffer
	metrics *Metrics
	logger  zerolog.Logger

	mutex      sync.Mutex
	current    models.Reading
	connection models.ConnectionState
	completed  bool
	generation uint64
	active     bool
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// New creates a monitor with its collaborators injected. The current reading
// starts at the default mock reading so the dashboard is never empty.
func New(cfg *config.Config, f fetcher.Fetcher, gen *mock.Generator, metrics *Metrics, logger zerolog.Logger) *Monitor {
	return &Monitor{
		cfg:     cfg,
		fetcher: f,
		gen:     gen,
		hist:    history.NewBuffer(cfg.History.Capacity),
		metrics: metrics,
		logger:  logger,
		current: gen.DefaultReading(),
		connection: models.ConnectionState{
			IsConnected: false,
			IsChecking:  true,
		},
	}
}

// Start runs one cycle immediately, then one per update interval until Stop
// or context cancellation. Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mutex.Lock()
	if m.active {
		m.mutex.Unlock()
		return
	}
	m.active = true
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	ctx = m.ctx
	m.mutex.Unlock()

	m.logger.Info().
		Str("mode", m.cfg.Source.Mode).
		Dur("interval", m.cfg.Source.UpdateInterval).
		Msg("Starting acquisition loop")
	go m.run(ctx)
}

// Stop disables the periodic trigger and marks the monitor inactive. Any
// in-flight cycle that completes afterwards is discarded.
func (m *Monitor) Stop() {
	m.mutex.Lock()
	if !m.active {
		m.mutex.Unlock()
		return
	}
	m.active = false
	// Invalidate every cycle started before teardown, so a completion that
	// ignores cancellation cannot apply after a later Start.
	m.generation++
	cancel := m.cancel
	done := m.done
	m.mutex.Unlock()

	cancel()
	<-done
	m.logger.Info().Msg("Acquisition loop stopped")
}

// RefreshNow triggers an immediate cycle, independent of the periodic timer
// and without resetting its phase. No-op when the monitor is not running.
func (m *Monitor) RefreshNow() {
	m.mutex.Lock()
	if !m.active {
		m.mutex.Unlock()
		return
	}
	ctx := m.ctx
	m.mutex.Unlock()

	go m.runCycle(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	m.runCycle(ctx)

	ticker := time.NewTicker(m.cfg.Source.UpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

// runCycle performs one acquisition: mark checking, fetch or synthesize,
// then reconcile the outcome into state as a single transition.
func (m *Monitor) runCycle(ctx context.Context) {
	gen := m.beginCycle()
	start := time.Now()

	if m.cfg.Source.Mode == config.ModeMock {
		m.applySuccess(gen, m.gen.GenerateReading(), time.Now(), true)
	} else {
		result, err := m.fetcher.Fetch(ctx)
		if err != nil {
			m.applyFailure(gen, err)
		} else {
			at := time.Now()
			if result.ReceivedAt != nil {
				at = *result.ReceivedAt
			}
			m.applySuccess(gen, result.Reading, at, result.IsOnline)
		}
	}

	m.metrics.CycleDuration.Observe(time.Since(start).Seconds())
}

// beginCycle claims the next generation and flags the check in progress.
func (m *Monitor) beginCycle() uint64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.generation++
	m.connection.IsChecking = true
	m.connection.Error = ""
	return m.generation
}

func (m *Monitor) applySuccess(gen uint64, reading models.Reading, at time.Time, online bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.active || gen != m.generation {
		m.logger.Debug().Uint64("generation", gen).Msg("Discarding superseded cycle result")
		return
	}

	m.current = reading
	m.hist.Append(models.NewHistoryPoint(reading, at))
	ts := at
	m.connection = models.ConnectionState{
		IsConnected: online,
		LastUpdate:  &ts,
		IsChecking:  false,
	}
	if !online {
		m.connection.Error = offlineMessage
	}
	m.completed = true

	m.metrics.Cycles.WithLabelValues("success").Inc()
	m.metrics.Connected.Set(boolToGauge(online))
	m.logger.Debug().Bool("online", online).Msgf("Applied reading: %s", reading)
}

// applyFailure keeps the current reading and LastUpdate untouched; only the
// connection state records the failure. The first cycle ever attempted seeds
// the view with mock data instead, so the dashboard never starts blank.
func (m *Monitor) applyFailure(gen uint64, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.active || gen != m.generation {
		m.logger.Debug().Uint64("generation", gen).Msg("Discarding superseded cycle failure")
		return
	}

	if !m.completed {
		m.current = m.gen.DefaultReading()
		m.hist.Reset(m.gen.GenerateHistory(seedHistoryCount, m.cfg.Source.UpdateInterval))
		m.logger.Info().Msg("First fetch failed, seeded dashboard with mock history")
	}

	m.connection.IsConnected = false
	m.connection.IsChecking = false
	m.connection.Error = err.Error()
	m.completed = true

	m.metrics.Cycles.WithLabelValues("failure").Inc()
	m.metrics.FetchFailures.WithLabelValues(failureType(err)).Inc()
	m.metrics.Connected.Set(0)
	m.logger.Warn().Err(err).Msg("Fetch cycle failed")
}

func boolToGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
