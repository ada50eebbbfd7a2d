package mock

import (
	"math"
	"math/rand"
	"time"

	"github.com/afroash/plant-monitor/internal/config"
	"github.com/afroash/plant-monitor/internal/models"
)

// Generator produces synthetic readings inside the configured calibration
// ranges. It backs the mock source mode and seeds the chart when the first
// real fetch ever attempted fails.
type Generator struct {
	cfg config.MockConfig
	rng *rand.Rand
}

// NewGenerator creates a generator drawing from the given calibration ranges.
func NewGenerator(cfg config.MockConfig) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// DefaultReading returns the configured default mock values.
func (g *Generator) DefaultReading() models.Reading {
	return models.NewReading(float64(g.cfg.SoilDefault), float64(g.cfg.LightDefault))
}

// GenerateReading returns a uniform-random reading within the calibration
// ranges, clamped to the ADC bounds.
func (g *Generator) GenerateReading() models.Reading {
	return models.NewReading(
		g.uniform(g.cfg.SoilMin, g.cfg.SoilMax),
		g.uniform(g.cfg.LightMin, g.cfg.LightMax),
	)
}

// GenerateHistory returns count points spaced interval apart, ending at now.
// Values follow a smoothed periodic pattern rather than pure noise so a
// freshly seeded chart looks like real sensor drift.
func (g *Generator) GenerateHistory(count int, interval time.Duration) []models.HistoryPoint {
	if count < 1 {
		return nil
	}

	now := time.Now()
	points := make([]models.HistoryPoint, 0, count)
	for i := 0; i < count; i++ {
		phase := float64(i) * 2 * math.Pi / float64(count)
		reading := models.NewReading(
			g.wave(g.cfg.SoilMin, g.cfg.SoilMax, phase),
			g.wave(g.cfg.LightMin, g.cfg.LightMax, phase+math.Pi/3),
		)
		at := now.Add(-time.Duration(count-1-i) * interval)
		points = append(points, models.NewHistoryPoint(reading, at))
	}
	return points
}

func (g *Generator) uniform(min, max int) float64 {
	if max <= min {
		return float64(min)
	}
	return float64(min + g.rng.Intn(max-min+1))
}

// wave produces a sine traversal of the range with a little noise on top.
func (g *Generator) wave(min, max int, phase float64) float64 {
	mid := float64(min+max) / 2
	amp := float64(max-min) / 2 * 0.6
	noise := (g.rng.Float64() - 0.5) * float64(max-min) * 0.08
	return mid + amp*math.Sin(phase) + noise
}
