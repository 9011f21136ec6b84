package core

import (
	"fmt"
	"strings"
)

// PositionSide represents the direction of an open position (LONG or SHORT)
type PositionSide string

// Position side constants
const (
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
)

// ParsePositionSide converts a textual side ("long", "SHORT", "buy", "sell") into a PositionSide
func ParsePositionSide(s string) (PositionSide, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return PositionSideLong, nil
	case "SHORT", "SELL":
		return PositionSideShort, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// Valid reports whether the side is one of the known constants
func (s PositionSide) Valid() bool {
	return s == PositionSideLong || s == PositionSideShort
}

// IsLong returns true for long positions
func (s PositionSide) IsLong() bool {
	return s == PositionSideLong
}

// Sign returns +1 for long positions and -1 for short ones.
// Multiplying a price difference (exit - entry) by Sign gives the signed P&L per unit.
func (s PositionSide) Sign() float64 {
	if s == PositionSideShort {
		return -1
	}
	return 1
}

// MoreFavorable reports whether stop a is strictly better than stop b for this side:
// higher for LONG, lower for SHORT
func (s PositionSide) MoreFavorable(a, b float64) bool {
	if s == PositionSideShort {
		return a < b
	}
	return a > b
}

// String implements fmt.Stringer
func (s PositionSide) String() string {
	return string(s)
}
