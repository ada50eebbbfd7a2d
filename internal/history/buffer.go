package history

import (
	"fmt"
	"sync"

	"github.com/afroash/plant-monitor/internal/models"
)

// Buffer is a thread-safe fixed-capacity FIFO of chart points. Once full,
// each append evicts the oldest point so the buffer always holds the most
// recent capacity points in insertion order.
type Buffer struct {
	points   []models.HistoryPoint
	capacity int
	mutex    sync.RWMutex
	evicted  int64
}

// NewBuffer creates a buffer holding at most capacity points.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		points:   make([]models.HistoryPoint, 0, capacity),
		capacity: capacity,
	}
}

// Append adds one point to the end, evicting from the front past capacity.
func (b *Buffer) Append(point models.HistoryPoint) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if len(b.points) >= b.capacity {
		b.points = b.points[1:]
		b.evicted++
	}
	b.points = append(b.points, point)
}

// Reset replaces the buffer contents, keeping only the newest capacity
// points of the given sequence. Used to seed the chart with synthetic
// history before any real data has arrived.
func (b *Buffer) Reset(points []models.HistoryPoint) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if over := len(points) - b.capacity; over > 0 {
		points = points[over:]
	}
	b.points = make([]models.HistoryPoint, 0, b.capacity)
	b.points = append(b.points, points...)
}

// Snapshot returns a copy of the points, oldest first.
func (b *Buffer) Snapshot() []models.HistoryPoint {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	out := make([]models.HistoryPoint, len(b.points))
	copy(out, b.points)
	return out
}

// Len returns the current number of points in the buffer.
func (b *Buffer) Len() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.points)
}

// Capacity returns the maximum number of points the buffer holds.
func (b *Buffer) Capacity() int {
	// No lock needed, capacity doesn't change
	return b.capacity
}

// String returns a human-readable representation of buffer state
func (b *Buffer) String() string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return fmt.Sprintf("History[%d/%d, evicted: %d]", len(b.points), b.capacity, b.evicted)
}
