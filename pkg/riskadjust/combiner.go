// Package riskadjust ties the volatility classifier to the trailing stop engine:
// it gates new stops on the trade veto and scales trail distance and size by the
// regime's multiplier.
package riskadjust

import (
	"fmt"
	"math"
	"strings"

	"github.com/raykavin/volguard/pkg/core"
	"github.com/raykavin/volguard/pkg/logger"
	"github.com/raykavin/volguard/pkg/trailing"
	"github.com/raykavin/volguard/pkg/volatility"
)

// Scaling maps a base trail amount and a size multiplier to an effective amount.
// The combiner has no opinion on the direction; callers pick the policy.
type Scaling func(amount, multiplier float64) float64

// NoScaling keeps the base amount
func NoScaling(amount, _ float64) float64 { return amount }

// InverseScaling widens the trail as the multiplier shrinks
func InverseScaling(amount, multiplier float64) float64 { return amount / multiplier }

// DirectScaling tightens the trail as the multiplier shrinks
func DirectScaling(amount, multiplier float64) float64 { return amount * multiplier }

// ParseScaling converts a policy name (none, inverse, direct) into a Scaling
func ParseScaling(name string) (Scaling, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoScaling, nil
	case "inverse", "widen":
		return InverseScaling, nil
	case "direct", "tighten":
		return DirectScaling, nil
	}
	return nil, fmt.Errorf("unknown trail scaling %q", name)
}

// Assessment is the regime-derived verdict for one index reading
type Assessment struct {
	Index          float64             `json:"index"`
	Regime         volatility.Regime   `json:"regime"`
	SizeMultiplier float64             `json:"size_multiplier"`
	Guidance       volatility.Guidance `json:"guidance"`
	Tradeable      bool                `json:"tradeable"`
	Reason         string              `json:"reason"`
}

// Combiner is stateless; it composes the two engines' outputs
type Combiner struct {
	classifier *volatility.Classifier
	engine     *trailing.Engine
	scaling    Scaling
	log        logger.Logger
}

// Option is a functional option for configuring a Combiner
type Option func(*Combiner)

// WithScaling sets the trail scaling policy, NoScaling by default
func WithScaling(scaling Scaling) Option {
	return func(c *Combiner) {
		if scaling != nil {
			c.scaling = scaling
		}
	}
}

// WithLogger sets the logger used for veto diagnostics
func WithLogger(log logger.Logger) Option {
	return func(c *Combiner) {
		c.log = log
	}
}

// New creates a combiner over a classifier and a trailing engine
func New(classifier *volatility.Classifier, engine *trailing.Engine, options ...Option) *Combiner {
	combiner := &Combiner{
		classifier: classifier,
		engine:     engine,
		scaling:    NoScaling,
		log:        logger.Nop{},
	}

	for _, option := range options {
		option(combiner)
	}

	return combiner
}

// Assess classifies the reading and applies the trade veto with the configured ceiling
func (c *Combiner) Assess(vix float64) Assessment {
	regime := c.classifier.Classify(vix)
	tradeable, reason := c.classifier.ShouldTrade(vix, 0)

	return Assessment{
		Index:          vix,
		Regime:         regime,
		SizeMultiplier: c.classifier.SizeMultiplier(regime),
		Guidance:       c.classifier.Recommend(regime),
		Tradeable:      tradeable,
		Reason:         reason,
	}
}

// ScaleTrail returns the effective trail amount for the reading under the scaling policy
func (c *Combiner) ScaleTrail(amount, vix float64) float64 {
	return c.scaling(amount, c.Assess(vix).SizeMultiplier)
}

// ScaleSize scales a proposed quantity by the regime multiplier, never below one unit
func (c *Combiner) ScaleSize(quantity int, vix float64) int {
	return scaleSize(quantity, c.Assess(vix).SizeMultiplier)
}

// Prepare vetoes new stops when trading is halted; otherwise it returns params with
// a scaled trail amount and quantity
func (c *Combiner) Prepare(p trailing.Params, vix float64) (trailing.Params, Assessment, error) {
	assessment := c.Assess(vix)
	if !assessment.Tradeable {
		c.log.WithFields(map[string]any{
			"instrument": p.Instrument,
			"index":      vix,
			"regime":     assessment.Regime,
		}).Warn(assessment.Reason)
		return p, assessment, fmt.Errorf("%s: %s: %w", p.Instrument, assessment.Reason, core.ErrTradingHalted)
	}

	p.Amount = c.scaling(p.Amount, assessment.SizeMultiplier)
	p.Quantity = scaleSize(p.Quantity, assessment.SizeMultiplier)

	return p, assessment, nil
}

// Open is Prepare followed by opening the stop on the engine
func (c *Combiner) Open(p trailing.Params, vix float64) (*trailing.State, Assessment, error) {
	p, assessment, err := c.Prepare(p, vix)
	if err != nil {
		return nil, assessment, err
	}

	state, err := c.engine.Open(p)
	if err != nil {
		return nil, assessment, err
	}

	return state, assessment, nil
}

func scaleSize(quantity int, multiplier float64) int {
	if quantity <= 0 {
		return quantity
	}
	return max(1, int(math.Floor(float64(quantity)*multiplier)))
}
