package trailing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/volguard/pkg/metric"
	"github.com/samber/lo"
)

// Summary collects realized results of finished trailing stops
type Summary struct {
	Wins          []float64 // realized P&L of profitable exits
	Losses        []float64 // realized P&L of losing exits
	Triggered     int       // exits caused by a stop hit
	Closed        int       // exits requested by the caller
	Modifications int       // accepted stop moves across all finished positions
}

// Add records a finished state. Active states are ignored.
func (s *Summary) Add(status Status) {
	if status.Active {
		return
	}

	if status.TriggerPrice != nil {
		s.Triggered++
	} else {
		s.Closed++
	}

	s.Modifications += status.Modifications
	if status.RealizedPnL >= 0 {
		s.Wins = append(s.Wins, status.RealizedPnL)
	} else {
		s.Losses = append(s.Losses, status.RealizedPnL)
	}
}

// Trades returns the number of finished positions
func (s Summary) Trades() int {
	return len(s.Wins) + len(s.Losses)
}

// Profit returns the total realized P&L
func (s Summary) Profit() float64 {
	return lo.Sum(s.Wins) + lo.Sum(s.Losses)
}

// WinPercentage returns the share of profitable exits, in percent
func (s Summary) WinPercentage() float64 {
	if s.Trades() == 0 {
		return 0
	}
	return float64(len(s.Wins)) / float64(s.Trades()) * 100
}

// Payoff returns the ratio of the average win to the average loss
func (s Summary) Payoff() float64 {
	if len(s.Losses) == 0 {
		return 0
	}

	avgLoss := metric.Mean(s.Losses)
	if avgLoss == 0 {
		return 0
	}

	return math.Abs(metric.Mean(s.Wins) / avgLoss)
}

// ProfitFactor returns gross profit over gross loss
func (s Summary) ProfitFactor() float64 {
	return metric.ProfitFactor(append(append([]float64{}, s.Wins...), s.Losses...))
}

// String formats the summary as a text table
func (s Summary) String() string {
	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)

	data := [][]string{
		{"Trades", strconv.Itoa(s.Trades())},
		{"Win", strconv.Itoa(len(s.Wins))},
		{"Loss", strconv.Itoa(len(s.Losses))},
		{"Stop hits", strconv.Itoa(s.Triggered)},
		{"Closed", strconv.Itoa(s.Closed)},
		{"Stop moves", strconv.Itoa(s.Modifications)},
		{"% Win", fmt.Sprintf("%.1f", s.WinPercentage())},
		{"Payoff", fmt.Sprintf("%.2f", s.Payoff())},
		{"Pr.Fact", fmt.Sprintf("%.2f", s.ProfitFactor())},
		{"Profit", fmt.Sprintf("%.2f", s.Profit())},
	}

	table.AppendBulk(data)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Render()

	return tableString.String()
}
