package volatility

// Guidance is the qualitative strategy recommendation attached to a regime
type Guidance struct {
	Label             string `json:"label"`
	MarketCondition   string `json:"market_condition"`
	PrimaryStrategy   string `json:"primary_strategy"`
	SecondaryStrategy string `json:"secondary_strategy"`
	Avoid             string `json:"avoid"`
	RiskLevel         string `json:"risk_level"`
	PositionSize      string `json:"position_size"`
	Warning           string `json:"warning,omitempty"`
}

// Recommend returns the fixed guidance record for a regime
func Recommend(regime Regime) Guidance {
	switch regime {
	case RegimeVeryLow:
		return Guidance{
			Label:             "VERY LOW VOLATILITY",
			MarketCondition:   "Complacent market, range-bound likely",
			PrimaryStrategy:   "SELL PREMIUM (Iron Condors, Credit Spreads)",
			SecondaryStrategy: "Buy cheap long-dated options for protection",
			Avoid:             "Avoid buying short-dated options (expensive time decay)",
			RiskLevel:         "LOW",
			PositionSize:      "Normal to Increased",
			Warning:           "Very low volatility often precedes a spike, keep some hedges",
		}
	case RegimeLow:
		return Guidance{
			Label:             "LOW VOLATILITY",
			MarketCondition:   "Calm market, trending or range-bound",
			PrimaryStrategy:   "SELL PREMIUM (Theta strategies)",
			SecondaryStrategy: "Iron Condors, Credit Spreads",
			Avoid:             "Avoid buying options (premium relatively expensive)",
			RiskLevel:         "LOW",
			PositionSize:      "Normal",
		}
	case RegimeNormal:
		return Guidance{
			Label:             "NORMAL VOLATILITY",
			MarketCondition:   "Typical market conditions",
			PrimaryStrategy:   "Balanced approach, both buying and selling viable",
			SecondaryStrategy: "Directional spreads, Calendar spreads",
			Avoid:             "No specific restrictions",
			RiskLevel:         "MODERATE",
			PositionSize:      "Slightly Reduced (80%)",
		}
	case RegimeHigh:
		return Guidance{
			Label:             "HIGH VOLATILITY",
			MarketCondition:   "Elevated uncertainty, trending market",
			PrimaryStrategy:   "BUY OPTIONS (Straddles, Strangles for breakouts)",
			SecondaryStrategy: "Sell far OTM premium for income",
			Avoid:             "Avoid selling naked options (unlimited risk)",
			RiskLevel:         "HIGH",
			PositionSize:      "Reduced by 50%",
			Warning:           "Large intraday swings expected, widen stop losses",
		}
	case RegimeExtreme:
		return Guidance{
			Label:             "EXTREME VOLATILITY",
			MarketCondition:   "Panic or crisis mode, market in turmoil",
			PrimaryStrategy:   "CAPITAL PRESERVATION, reduce exposure significantly",
			SecondaryStrategy: "Only trade with strict risk management",
			Avoid:             "Avoid large positions, avoid selling options",
			RiskLevel:         "VERY HIGH",
			PositionSize:      "Reduced by 70%",
			Warning:           "Crisis mode, consider staying in cash or protective puts only",
		}
	}
	panic("volatility: unhandled regime " + regime.String())
}
