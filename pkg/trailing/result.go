package trailing

// Reasons reported by the engine results
const (
	ReasonMoved        = "moved"
	ReasonUnchanged    = "unchanged"
	ReasonTriggered    = "triggered"
	ReasonInactive     = "inactive"
	ReasonClosed       = "closed"
	ReasonInvalidPrice = "invalid price"
	ReasonNotFavorable = "not more favorable than current stop"
)

// UpdateResult is the outcome of feeding a market tick to a state
type UpdateResult struct {
	Instrument      string  `json:"instrument"`
	Moved           bool    `json:"moved"`
	Triggered       bool    `json:"triggered"`
	Degraded        bool    `json:"degraded"`
	Reason          string  `json:"reason"`
	Price           float64 `json:"price"`
	OldStop         float64 `json:"old_stop"`
	NewStop         float64 `json:"new_stop"`
	ExtremePrice    float64 `json:"extreme_price"`
	Modifications   int     `json:"modifications"`
	UnrealizedPnL   float64 `json:"unrealized_pnl"`
	RealizedPnL     float64 `json:"realized_pnl"`
	ProtectedProfit float64 `json:"protected_profit"`
}

// MoveResult is the outcome of an explicit stop override
type MoveResult struct {
	Instrument      string  `json:"instrument"`
	Applied         bool    `json:"applied"`
	Reason          string  `json:"reason"`
	OldStop         float64 `json:"old_stop"`
	NewStop         float64 `json:"new_stop"`
	Modifications   int     `json:"modifications"`
	ProtectedProfit float64 `json:"protected_profit"`
}
