package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/volguard/pkg/core"
	"github.com/raykavin/volguard/pkg/feed"
	"github.com/raykavin/volguard/pkg/indicator"
	"github.com/raykavin/volguard/pkg/logger"
	"github.com/raykavin/volguard/pkg/riskadjust"
	"github.com/raykavin/volguard/pkg/storage"
	"github.com/raykavin/volguard/pkg/trailing"
	"github.com/raykavin/volguard/pkg/volatility"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Replay command flags
var (
	tickFile    string
	instrument  string
	side        string
	entryPrice  float64
	initialStop float64
	trailMode   string
	trailAmount float64
	quantity    int
	journalPath string
	atrPeriod   int
	openIndex   float64
)

func buildReplayCmd() *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a tick file through a trailing stop",
		RunE:  runReplay,
	}

	replayCmd.Flags().StringVarP(&tickFile, "file", "f", "", "CSV tick file (time, price and optional high, low, atr, vix)")
	replayCmd.Flags().StringVarP(&instrument, "instrument", "i", "", "Instrument identifier")
	replayCmd.Flags().StringVarP(&side, "side", "s", "long", "Position side (long or short)")
	replayCmd.Flags().Float64VarP(&entryPrice, "entry", "e", 0, "Entry price")
	replayCmd.Flags().Float64Var(&initialStop, "stop", 0, "Initial stop (default 2% beyond entry)")
	replayCmd.Flags().StringVarP(&trailMode, "mode", "m", "", "Trail mode: percentage, absolute or atr (default from config)")
	replayCmd.Flags().Float64VarP(&trailAmount, "amount", "a", 0, "Trail amount (default from config)")
	replayCmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "Position quantity")
	replayCmd.Flags().StringVarP(&journalPath, "journal", "j", "", "BuntDB file recording stop moves (default journal_path from config)")
	replayCmd.Flags().IntVar(&atrPeriod, "atr-period", 0, "ATR period when the file has no atr column (default from config)")
	replayCmd.Flags().Float64Var(&openIndex, "vix", 0, "Volatility index at entry (default first vix in file)")

	replayCmd.MarkFlagRequired("file")
	replayCmd.MarkFlagRequired("instrument")
	replayCmd.MarkFlagRequired("entry")

	return replayCmd
}

func runReplay(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}

	ticks, err := feed.ReadTicksFile(tickFile)
	if err != nil {
		return err
	}

	params, err := replayParams(cfg.Settings.Trailing)
	if err != nil {
		return err
	}

	modifiers := core.MultiModifier{
		core.StopModifierFunc(func(instrument string, newStop float64) {
			log.WithFields(map[string]any{
				"instrument": instrument,
				"stop":       newStop,
			}).Info("stop modified")
		}),
	}

	if journalPath == "" {
		journalPath = cfg.JournalPath
	}

	var journal *storage.Journal
	if journalPath != "" {
		journal, err = storage.FromFile(journalPath, storage.WithJournalLogger(log))
		if err != nil {
			return err
		}
		defer journal.Close()
		modifiers = append(modifiers, journal)
	}

	engineOptions := []trailing.Option{trailing.WithLogger(log)}
	if cfg.Settings.Trailing.ATRFallback > 0 {
		engineOptions = append(engineOptions, trailing.WithATRFallback(cfg.Settings.Trailing.ATRFallback))
	}
	engine := trailing.NewEngine(modifiers, engineOptions...)

	params, err = assess(cfg.Settings, engine, log, params, ticks)
	if err != nil {
		return err
	}

	book := trailing.NewBook(engine)
	if _, err := book.Open(params); err != nil {
		return err
	}

	period := atrPeriod
	if period <= 0 {
		period = cfg.Settings.Trailing.ATRPeriod
	}

	var estimates []*float64
	if params.Mode == trailing.ModeATRMultiple {
		estimates = indicator.ATREstimates(feed.Highs(ticks), feed.Lows(ticks), feed.Prices(ticks), period)
	}

	progressBar := progressbar.Default(int64(len(ticks)))
	for i, tick := range ticks {
		atr := tick.ATR
		if atr == nil && estimates != nil {
			atr = estimates[i]
		}

		result, err := book.Update(params.Instrument, tick.Price, atr)
		if err != nil {
			return err
		}
		_ = progressBar.Add(1)

		if result.Triggered {
			break
		}
	}
	_ = progressBar.Finish()

	status, err := book.Status(params.Instrument)
	if err != nil {
		return err
	}

	if status.Active {
		last := ticks[len(ticks)-1].Price
		if _, err := book.Close(params.Instrument, last); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	renderStatuses(out, book.Statuses())
	fmt.Fprintln(out, book.Summary().String())

	if journal != nil {
		events, err := journal.Events(storage.ForInstrument(params.Instrument))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d stop moves journaled to %s\n", len(events), journalPath)
	}

	return nil
}

func replayParams(defaults core.TrailingSettings) (trailing.Params, error) {
	positionSide, err := core.ParsePositionSide(side)
	if err != nil {
		return trailing.Params{}, err
	}

	modeName := trailMode
	if modeName == "" {
		modeName = defaults.Mode
	}
	mode, err := trailing.ParseMode(modeName)
	if err != nil {
		return trailing.Params{}, err
	}

	amount := trailAmount
	if amount == 0 {
		amount = defaults.Amount
	}

	params := trailing.Params{
		Instrument: instrument,
		EntryPrice: entryPrice,
		Side:       positionSide,
		Mode:       mode,
		Amount:     amount,
		Quantity:   quantity,
	}

	if initialStop != 0 {
		stop := initialStop
		params.InitialStop = &stop
	}

	return params, nil
}

// assess applies the regime veto and scaling when an entry index reading is known
func assess(settings core.Settings, engine *trailing.Engine, log logger.Logger,
	params trailing.Params, ticks []feed.Tick) (trailing.Params, error) {

	index := openIndex
	if index <= 0 && len(ticks) > 0 && ticks[0].VIX != nil {
		index = *ticks[0].VIX
	}

	if index <= 0 {
		log.Warn("no volatility reading at entry, regime scaling skipped")
		return params, nil
	}

	classifier, err := volatility.NewClassifier(volatility.ConfigFromSettings(settings.Regime),
		volatility.WithLogger(log))
	if err != nil {
		return params, err
	}

	scaling, err := riskadjust.ParseScaling(settings.Trailing.Scaling)
	if err != nil {
		return params, err
	}

	combiner := riskadjust.New(classifier, engine,
		riskadjust.WithScaling(scaling),
		riskadjust.WithLogger(log),
	)

	params, assessment, err := combiner.Prepare(params, index)
	if errors.Is(err, core.ErrTradingHalted) {
		return params, fmt.Errorf("entry rejected at %s regime: %w", assessment.Regime, err)
	}
	if err != nil {
		return params, err
	}

	log.WithFields(map[string]any{
		"index":    index,
		"regime":   assessment.Regime,
		"amount":   params.Amount,
		"quantity": params.Quantity,
	}).Info(assessment.Guidance.PositionSize)

	return params, nil
}

func renderStatuses(w io.Writer, statuses []trailing.Status) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Instrument", "Side", "Entry", "Stop", "Extreme", "Trail", "Qty", "Moves", "Exit", "PnL"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
	})

	for _, status := range statuses {
		exit := "closed"
		if status.TriggerPrice != nil {
			exit = "stop hit at " + money(*status.TriggerPrice)
		}

		table.Append([]string{
			status.Instrument,
			status.Side.String(),
			money(status.EntryPrice),
			money(status.CurrentStop),
			money(status.ExtremePrice),
			fmt.Sprintf("%g %s", status.TrailAmount, status.Mode),
			strconv.Itoa(status.Quantity),
			strconv.Itoa(status.Modifications),
			exit,
			money(status.RealizedPnL),
		})
	}

	table.Render()
}

// money rounds a price for display
func money(value float64) string {
	return decimal.NewFromFloat(value).Round(2).StringFixed(2)
}
