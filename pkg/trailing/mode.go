package trailing

import (
	"fmt"
	"strings"

	"github.com/raykavin/volguard/pkg/core"
)

// Mode selects how the trail distance is measured
type Mode string

// Trail mode constants
const (
	ModePercentage  Mode = "PERCENTAGE"   // Amount is a percentage of the extreme price (1.0 = 1%)
	ModeAbsolute    Mode = "ABSOLUTE"     // Amount is a price distance
	ModeATRMultiple Mode = "ATR_MULTIPLE" // Amount multiplies the ATR supplied with each tick
)

// ParseMode converts a textual mode ("percentage", "absolute", "atr") into a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PERCENTAGE", "PERCENT", "PCT":
		return ModePercentage, nil
	case "ABSOLUTE", "POINTS":
		return ModeAbsolute, nil
	case "ATR", "ATR_MULTIPLE":
		return ModeATRMultiple, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidTrailMode, s)
}

// Valid reports whether the mode is one of the known constants
func (m Mode) Valid() bool {
	switch m {
	case ModePercentage, ModeAbsolute, ModeATRMultiple:
		return true
	}
	return false
}

// candidate computes the stop implied by reference for the given side.
// ok is false when the mode needs an ATR that was not supplied.
func (m Mode) candidate(side core.PositionSide, reference, amount float64, atr *float64) (stop float64, ok bool) {
	sign := side.Sign()
	switch m {
	case ModePercentage:
		return reference * (1 - sign*amount/100), true
	case ModeAbsolute:
		return reference - sign*amount, true
	case ModeATRMultiple:
		if atr == nil {
			return 0, false
		}
		return reference - sign*amount*(*atr), true
	}
	panic(fmt.Sprintf("trailing: unhandled mode %q", m))
}
