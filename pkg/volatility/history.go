package volatility

import (
	"sort"
	"sync"
	"time"

	"github.com/raykavin/volguard/pkg/core"
	"github.com/samber/lo"
)

// Point is one index reading
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// History is an append-only sequence of index readings, safe for concurrent use.
// It never trims itself; callers manage retention with Prune.
type History struct {
	mu     sync.RWMutex
	points []Point
}

// NewHistory creates a history seeded with points
func NewHistory(points ...Point) *History {
	return &History{points: append([]Point(nil), points...)}
}

// Add appends a reading
func (h *History) Add(t time.Time, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.points = append(h.points, Point{Time: t, Value: value})
}

// Len returns the number of readings
func (h *History) Len() int {
	if h == nil {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.points)
}

// Points returns a copy of every reading in insertion order
func (h *History) Points() []Point {
	if h == nil {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	return append([]Point(nil), h.points...)
}

// Values returns a copy of the reading values in insertion order
func (h *History) Values() core.Series[float64] {
	return lo.Map(h.Points(), func(p Point, _ int) float64 { return p.Value })
}

// Last returns the values of the most recent n readings
func (h *History) Last(n int) core.Series[float64] {
	return h.Values().LastValues(n)
}

// Prune drops readings older than before and returns how many were removed.
// Readings are assumed to be appended in time order.
func (h *History) Prune(before time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := sort.Search(len(h.points), func(i int) bool {
		return !h.points[i].Time.Before(before)
	})

	h.points = append([]Point(nil), h.points[idx:]...)
	return idx
}
