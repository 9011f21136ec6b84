// Package config handles application configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/raykavin/volguard/pkg/core"
	"github.com/raykavin/volguard/pkg/riskadjust"
	"github.com/raykavin/volguard/pkg/trailing"
	"github.com/raykavin/volguard/pkg/volatility"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Constants for configuration
const (
	EnvPrefix         = "VOLGUARD"
	DefaultConfigPath = "./volguard.yaml"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Settings    core.Settings
	LogLevel    string
	LogJSON     bool
	LogBackend  string
	JournalPath string // replay journal, empty disables it
	ConfigPath  string
}

// Load reads .env (when present), the YAML file at path and VOLGUARD_* environment
// variables, in increasing order of precedence. An empty path uses
// VOLGUARD_CONFIG_PATH or DefaultConfigPath; a missing file is not an error.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path == "" {
		path = v.GetString("config_path")
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	thresholds, err := floats(v.Get("regime.thresholds"))
	if err != nil {
		return nil, fmt.Errorf("regime.thresholds: %w", err)
	}
	multipliers, err := floats(v.Get("regime.multipliers"))
	if err != nil {
		return nil, fmt.Errorf("regime.multipliers: %w", err)
	}

	settings := core.Settings{
		Regime: core.RegimeSettings{
			HistoricalMean: v.GetFloat64("regime.historical_mean"),
			MaxIndex:       v.GetFloat64("regime.max_index"),
			SpikeThreshold: v.GetFloat64("regime.spike_threshold"),
			BaseHeat:       v.GetFloat64("regime.base_heat"),
		},
		Trailing: core.TrailingSettings{
			Mode:        v.GetString("trailing.mode"),
			Amount:      v.GetFloat64("trailing.amount"),
			ATRFallback: v.GetFloat64("trailing.atr_fallback"),
			ATRPeriod:   v.GetInt("trailing.atr_period"),
			Scaling:     v.GetString("trailing.scaling"),
		},
	}

	if len(thresholds) != len(settings.Regime.Thresholds) {
		return nil, fmt.Errorf("%w: want %d thresholds, got %d",
			core.ErrInvalidThresholds, len(settings.Regime.Thresholds), len(thresholds))
	}
	if len(multipliers) != len(settings.Regime.Multipliers) {
		return nil, fmt.Errorf("%w: want %d multipliers, got %d",
			core.ErrInvalidMultipliers, len(settings.Regime.Multipliers), len(multipliers))
	}
	copy(settings.Regime.Thresholds[:], thresholds)
	copy(settings.Regime.Multipliers[:], multipliers)

	if err := Validate(settings); err != nil {
		return nil, err
	}

	return &AppConfig{
		Settings:    settings,
		LogLevel:    v.GetString("log.level"),
		LogJSON:     v.GetBool("log.json"),
		LogBackend:  v.GetString("log.backend"),
		JournalPath: v.GetString("journal_path"),
		ConfigPath:  path,
	}, nil
}

// Validate checks every setting against the component that consumes it
func Validate(settings core.Settings) error {
	if _, err := volatility.NewClassifier(volatility.ConfigFromSettings(settings.Regime)); err != nil {
		return err
	}

	if _, err := trailing.ParseMode(settings.Trailing.Mode); err != nil {
		return err
	}

	if !(settings.Trailing.Amount > 0) {
		return fmt.Errorf("%w: %v", core.ErrInvalidTrailAmount, settings.Trailing.Amount)
	}

	if settings.Trailing.ATRFallback < 0 {
		return fmt.Errorf("atr fallback: %w", core.ErrNegativeValue)
	}

	if settings.Trailing.ATRPeriod < 1 {
		return fmt.Errorf("atr period must be positive, got %d", settings.Trailing.ATRPeriod)
	}

	if _, err := riskadjust.ParseScaling(settings.Trailing.Scaling); err != nil {
		return err
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := volatility.DefaultConfig()

	v.SetDefault("config_path", DefaultConfigPath)
	v.SetDefault("journal_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.backend", "zerolog")

	v.SetDefault("regime.thresholds", defaults.Thresholds[:])
	v.SetDefault("regime.multipliers", defaults.Multipliers[:])
	v.SetDefault("regime.historical_mean", defaults.HistoricalMean)
	v.SetDefault("regime.max_index", defaults.MaxIndex)
	v.SetDefault("regime.spike_threshold", defaults.SpikeThreshold)
	v.SetDefault("regime.base_heat", defaults.BaseHeat)

	v.SetDefault("trailing.mode", string(trailing.ModePercentage))
	v.SetDefault("trailing.amount", trailing.DefaultStopPercent)
	v.SetDefault("trailing.atr_fallback", 0.0)
	v.SetDefault("trailing.atr_period", 14)
	v.SetDefault("trailing.scaling", "none")
}

// floats accepts a YAML list or a comma separated string, as environment variables give
func floats(value any) ([]float64, error) {
	switch raw := value.(type) {
	case string:
		parts := strings.Split(raw, ",")
		result := make([]float64, 0, len(parts))
		for _, part := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, err
			}
			result = append(result, f)
		}
		return result, nil
	case []float64:
		return append([]float64(nil), raw...), nil
	case []any:
		result := make([]float64, 0, len(raw))
		for _, item := range raw {
			f, err := cast.ToFloat64E(item)
			if err != nil {
				return nil, err
			}
			result = append(result, f)
		}
		return result, nil
	}
	return nil, fmt.Errorf("unsupported value %T", value)
}
