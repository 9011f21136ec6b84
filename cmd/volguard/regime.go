package main

import (
	"encoding/json"
	"fmt"

	"github.com/raykavin/volguard/pkg/feed"
	"github.com/raykavin/volguard/pkg/volatility"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
)

// Regime command flags
var (
	regimeIndex  float64
	historyFile  string
	retention    string
	regimeAsJSON bool
)

func buildRegimeCmd() *cobra.Command {
	regimeCmd := &cobra.Command{
		Use:   "regime",
		Short: "Classify a volatility index reading and print trading guidance",
		RunE:  runRegime,
	}

	regimeCmd.Flags().Float64VarP(&regimeIndex, "vix", "v", 0, "Current volatility index reading")
	regimeCmd.Flags().StringVarP(&historyFile, "history", "H", "", "CSV of past readings (time plus vix or price column)")
	regimeCmd.Flags().StringVarP(&retention, "retention", "r", "", "Keep only history newer than this window (e.g. 30d, 2w)")
	regimeCmd.Flags().BoolVar(&regimeAsJSON, "json", false, "Print the analysis as JSON")

	regimeCmd.MarkFlagRequired("vix")

	return regimeCmd
}

func runRegime(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	classifier, err := volatility.NewClassifier(
		volatility.ConfigFromSettings(cfg.Settings.Regime),
		volatility.WithLogger(log),
	)
	if err != nil {
		return err
	}

	history, err := loadHistory(historyFile, retention)
	if err != nil {
		return err
	}

	log.WithFields(map[string]any{
		"index":   regimeIndex,
		"history": history.Len(),
	}).Debug("analyzing reading")

	analysis := classifier.Analyze(regimeIndex, history)

	if regimeAsJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(analysis)
	}

	return analysis.Render(cmd.OutOrStdout())
}

// loadHistory reads past readings from path. Files without a vix column are read as
// index series in the price column. The retention window is measured back from the
// newest reading.
func loadHistory(path, window string) (*volatility.History, error) {
	if path == "" {
		return nil, nil
	}

	ticks, err := feed.ReadTicksFile(path)
	if err != nil {
		return nil, err
	}

	history := feed.History(ticks)
	if history.Len() == 0 {
		history = volatility.NewHistory(lo.Map(ticks, func(t feed.Tick, _ int) volatility.Point {
			return volatility.Point{Time: t.Time, Value: t.Price}
		})...)
	}

	if window == "" {
		return history, nil
	}

	duration, err := str2duration.ParseDuration(window)
	if err != nil {
		return nil, fmt.Errorf("invalid retention %q: %w", window, err)
	}

	points := history.Points()
	if len(points) > 0 {
		history.Prune(points[len(points)-1].Time.Add(-duration))
	}

	return history, nil
}
