package core

import "errors"

var (
	ErrEmptyInstrument    = errors.New("empty instrument")
	ErrInvalidSide        = errors.New("invalid position side")
	ErrInvalidTrailMode   = errors.New("invalid trail mode")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidTrailAmount = errors.New("trail amount must be positive")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrInvalidStop        = errors.New("invalid initial stop")
	ErrInvalidThresholds  = errors.New("regime thresholds must be strictly ascending")
	ErrInvalidMultipliers = errors.New("size multipliers must be in (0,1] and non-increasing")
	ErrNegativeValue      = errors.New("negative value")
	ErrTradingHalted      = errors.New("trading halted by volatility regime")
	ErrPositionExists     = errors.New("position already tracked")
	ErrPositionNotFound   = errors.New("position not found")
)
