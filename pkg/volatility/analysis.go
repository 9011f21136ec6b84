package volatility

import (
	"fmt"
	"io"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/volguard/pkg/core"
	"github.com/raykavin/volguard/pkg/metric"
)

// Analysis combines every classifier output for one reading
type Analysis struct {
	Index          float64  `json:"index"`
	Regime         Regime   `json:"regime"`
	SizeMultiplier float64  `json:"size_multiplier"`
	Guidance       Guidance `json:"guidance"`
	Spike          bool     `json:"spike"`
	SpikeMessage   string   `json:"spike_message,omitempty"`
	Signal         Signal   `json:"signal"`
	SignalReason   string   `json:"signal_reason"`
	Tradeable      bool     `json:"tradeable"`
	TradeReason    string   `json:"trade_reason"`
	PortfolioHeat  float64  `json:"portfolio_heat"`

	history core.Series[float64]
}

// Analyze runs every signal for the current reading using the configured defaults.
// history may be nil.
func (c *Classifier) Analyze(current float64, history *History) Analysis {
	regime := c.Classify(current)
	spike, spikeMessage := c.DetectSpike(history, current, c.cfg.SpikeThreshold)
	signal, signalReason := c.MeanReversionSignal(current, c.cfg.HistoricalMean)
	tradeable, tradeReason := c.ShouldTrade(current, c.cfg.MaxIndex)

	return Analysis{
		Index:          current,
		Regime:         regime,
		SizeMultiplier: c.SizeMultiplier(regime),
		Guidance:       Recommend(regime),
		Spike:          spike,
		SpikeMessage:   spikeMessage,
		Signal:         signal,
		SignalReason:   signalReason,
		Tradeable:      tradeable,
		TradeReason:    tradeReason,
		PortfolioHeat:  c.AdjustedPortfolioHeat(current, c.cfg.BaseHeat),
		history:        history.Values(),
	}
}

// Render writes the analysis as text tables, followed by a histogram and a bootstrap
// interval of the history mean when history is available
func (a Analysis) Render(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})
	table.AppendBulk([][]string{
		{"Index", fmt.Sprintf("%.2f", a.Index)},
		{"Regime", a.Regime.String()},
		{"Risk level", a.Guidance.RiskLevel},
		{"Size multiplier", fmt.Sprintf("%.0f%%", a.SizeMultiplier*100)},
		{"Portfolio heat", fmt.Sprintf("%.2f%%", a.PortfolioHeat)},
		{"Should trade", fmt.Sprintf("%t", a.Tradeable)},
		{"Trade gate", a.TradeReason},
		{"Mean reversion", string(a.Signal)},
		{"Reason", a.SignalReason},
	})
	table.Render()

	guidance := tablewriter.NewWriter(w)
	guidance.SetHeader([]string{"Guidance", a.Guidance.Label})
	guidance.SetAutoWrapText(false)
	guidance.AppendBulk([][]string{
		{"Market", a.Guidance.MarketCondition},
		{"Primary", a.Guidance.PrimaryStrategy},
		{"Secondary", a.Guidance.SecondaryStrategy},
		{"Avoid", a.Guidance.Avoid},
		{"Position size", a.Guidance.PositionSize},
	})
	guidance.Render()

	var notes []string
	if a.Spike {
		notes = append(notes, a.SpikeMessage)
	}
	if a.Guidance.Warning != "" {
		notes = append(notes, a.Guidance.Warning)
	}
	if len(notes) > 0 {
		if _, err := fmt.Fprintf(w, "%s\n", strings.Join(notes, "\n")); err != nil {
			return err
		}
	}

	if len(a.history) < 2 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "\n-- HISTORY (%d readings, range %.2f ~ %.2f) --\n",
		a.history.Length(), a.history.Min(), a.history.Max()); err != nil {
		return err
	}

	hist := histogram.Hist(10, a.history)
	if err := histogram.Fprint(w, hist, histogram.Linear(20)); err != nil {
		return err
	}

	interval := metric.Bootstrap(a.history, metric.Mean, 2000, 0.95)
	_, err := fmt.Fprintf(w, "MEAN: %.2f (%.2f ~ %.2f) z-score of current: %.2f\n",
		interval.Mean, interval.Lower, interval.Upper, metric.ZScore(a.history, a.Index))
	return err
}
