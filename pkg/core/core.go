package core

// StopModifier receives every accepted stop move. Implementations forward the new
// level to an order-management collaborator; the engine never talks to a broker.
type StopModifier interface {
	ModifyStop(instrument string, newStop float64)
}

// StopModifierFunc adapts a plain function to the StopModifier interface
type StopModifierFunc func(instrument string, newStop float64)

// ModifyStop implements StopModifier
func (f StopModifierFunc) ModifyStop(instrument string, newStop float64) {
	f(instrument, newStop)
}

// MultiModifier fans a stop move out to several modifiers in order
type MultiModifier []StopModifier

// ModifyStop implements StopModifier
func (m MultiModifier) ModifyStop(instrument string, newStop float64) {
	for _, modifier := range m {
		if modifier != nil {
			modifier.ModifyStop(instrument, newStop)
		}
	}
}

// Position describes an opened position as handed over by the order-management side
type Position struct {
	Instrument string
	EntryPrice float64
	Side       PositionSide
	Quantity   int
}
