package wsfeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/afroash/plant-monitor/internal/config"
	"github.com/afroash/plant-monitor/internal/fetcher"
	"github.com/afroash/plant-monitor/internal/models"
)

// State represents the current state of the push channel.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	// StateExhausted is terminal: the retry budget ran out and no further
	// reconnection attempts will be made.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// payload is the message shape the device pushes over the socket. Fields
// stay loosely typed so validation can name an offending field.
type payload struct {
	SoilMoisture any `json:"soilMoisture"`
	Light        any `json:"light"`
}

// Feed subscribes to the device's push channel and delivers validated,
// clamped readings. It is the documented alternative to the polling
// fetcher and is not part of the active dashboard data flow.
//
// On channel drop the feed reconnects with a fixed backoff interval and a
// bounded retry count; exhausting the budget stops reconnection for good.
type Feed struct {
	url               string
	reconnectInterval time.Duration
	maxRetries        int
	logger            zerolog.Logger
	readings          chan models.Reading

	stateMutex sync.RWMutex
	state      State
}

// NewFeed creates a feed for the configured websocket endpoint.
func NewFeed(cfg config.WebSocketConfig, logger zerolog.Logger) *Feed {
	return &Feed{
		url:               cfg.URL,
		reconnectInterval: cfg.ReconnectInterval,
		maxRetries:        cfg.MaxRetries,
		logger:            logger,
		readings:          make(chan models.Reading, 10),
		state:             StateDisconnected,
	}
}

// Readings returns the channel where validated readings are delivered.
func (f *Feed) Readings() <-chan models.Reading {
	return f.readings
}

// State returns the current channel state.
func (f *Feed) State() State {
	f.stateMutex.RLock()
	defer f.stateMutex.RUnlock()
	return f.state
}

func (f *Feed) setState(state State) {
	f.stateMutex.Lock()
	f.state = state
	f.stateMutex.Unlock()
	f.logger.Info().Str("state", state.String()).Msg("Feed state updated")
}

// Run connects and reads until the context is cancelled or the retry budget
// is exhausted. Each channel drop gets a fresh budget.
func (f *Feed) Run(ctx context.Context) error {
	for {
		conn, err := f.connectWithRetry(ctx)
		if err != nil {
			if ctx.Err() != nil {
				f.setState(StateDisconnected)
				return ctx.Err()
			}
			f.setState(StateExhausted)
			return fmt.Errorf("giving up after %d reconnect attempts: %w", f.maxRetries+1, err)
		}

		f.readLoop(ctx, conn)

		if ctx.Err() != nil {
			f.setState(StateDisconnected)
			return ctx.Err()
		}
		f.setState(StateDisconnected)
		f.logger.Info().Msg("Channel dropped, will reconnect")
	}
}

// connectWithRetry dials with a fixed backoff interval, at most
// maxRetries+1 attempts in total.
func (f *Feed) connectWithRetry(ctx context.Context) (*websocket.Conn, error) {
	f.setState(StateConnecting)

	var conn *websocket.Conn
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.reconnectInterval), uint64(f.maxRetries)),
		ctx,
	)
	err := backoff.Retry(func() error {
		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		c, resp, err := dialer.DialContext(ctx, f.url, nil)
		if err != nil {
			f.logger.Warn().Err(err).Str("url", f.url).Msg("Dial failed")
			return err
		}
		resp.Body.Close()
		conn = c
		return nil
	}, bo)
	if err != nil {
		return nil, err
	}

	f.setState(StateConnected)
	return conn, nil
}

// readLoop reads pushed payloads until the connection fails or the context
// is cancelled. Invalid payloads are dropped, not fatal.
func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// Unblock ReadJSON when the context ends.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg payload
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				f.logger.Warn().Err(err).Msg("Read error")
			}
			return
		}

		reading, err := validatePayload(msg)
		if err != nil {
			f.logger.Warn().Err(err).Msg("Dropping invalid payload")
			continue
		}

		select {
		case f.readings <- reading:
		case <-ctx.Done():
			return
		}
	}
}

// validatePayload applies the same rules as the polling fetcher: fields
// must be finite numbers, out-of-range values are clamped.
func validatePayload(msg payload) (models.Reading, error) {
	soil, err := fetcher.NumericField("soilMoisture", msg.SoilMoisture)
	if err != nil {
		return models.Reading{}, err
	}
	light, err := fetcher.NumericField("light", msg.Light)
	if err != nil {
		return models.Reading{}, err
	}
	return models.NewReading(soil, light), nil
}
