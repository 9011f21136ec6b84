// Package feed reads market ticks from CSV files for offline replay.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/volguard/pkg/volatility"
	"github.com/samber/lo"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyFeed     = errors.New("empty feed")
)

// Tick is one market observation. High and Low default to Price when the file has no
// such columns; ATR and VIX are nil when absent.
type Tick struct {
	Time  time.Time
	Price float64
	High  float64
	Low   float64
	ATR   *float64
	VIX   *float64
}

// ReadTicksFile opens path and reads its ticks
func ReadTicksFile(path string) ([]Tick, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ticks, err := ReadTicks(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ticks, nil
}

// ReadTicks parses CSV with a header row. Required columns: time, price.
// Optional columns: high, low, atr, vix. Time is unix seconds, RFC3339 or YYYY-MM-DD.
func ReadTicks(r io.Reader) ([]Tick, error) {
	lines, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(lines) < 2 {
		return nil, ErrEmptyFeed
	}

	columns := make(map[string]int, len(lines[0]))
	for i, name := range lines[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{"time", "price"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	ticks := make([]Tick, 0, len(lines)-1)
	for n, line := range lines[1:] {
		tick, err := parseTick(line, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		ticks = append(ticks, tick)
	}

	return ticks, nil
}

func parseTick(line []string, columns map[string]int) (Tick, error) {
	var tick Tick
	var err error

	if tick.Time, err = parseTime(line[columns["time"]]); err != nil {
		return tick, err
	}

	if tick.Price, err = parseFloat(line[columns["price"]]); err != nil {
		return tick, fmt.Errorf("price: %w", err)
	}

	tick.High, tick.Low = tick.Price, tick.Price
	if v, ok, err := optional(line, columns, "high"); err != nil {
		return tick, err
	} else if ok {
		tick.High = *v
	}

	if v, ok, err := optional(line, columns, "low"); err != nil {
		return tick, err
	} else if ok {
		tick.Low = *v
	}

	if tick.ATR, _, err = optional(line, columns, "atr"); err != nil {
		return tick, err
	}

	if tick.VIX, _, err = optional(line, columns, "vix"); err != nil {
		return tick, err
	}

	return tick, nil
}

func optional(line []string, columns map[string]int, name string) (*float64, bool, error) {
	idx, ok := columns[name]
	if !ok || idx >= len(line) || strings.TrimSpace(line[idx]) == "" {
		return nil, false, nil
	}

	v, err := parseFloat(line[idx])
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", name, err)
	}
	return &v, true, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}

	for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// Prices returns the close price of every tick
func Prices(ticks []Tick) []float64 {
	return lo.Map(ticks, func(t Tick, _ int) float64 { return t.Price })
}

// Highs returns the high of every tick
func Highs(ticks []Tick) []float64 {
	return lo.Map(ticks, func(t Tick, _ int) float64 { return t.High })
}

// Lows returns the low of every tick
func Lows(ticks []Tick) []float64 {
	return lo.Map(ticks, func(t Tick, _ int) float64 { return t.Low })
}

// History builds a volatility history from ticks carrying an index reading
func History(ticks []Tick) *volatility.History {
	points := lo.FilterMap(ticks, func(t Tick, _ int) (volatility.Point, bool) {
		if t.VIX == nil {
			return volatility.Point{}, false
		}
		return volatility.Point{Time: t.Time, Value: *t.VIX}, true
	})
	return volatility.NewHistory(points...)
}
