package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Config controls how the console logger is built
type Config struct {
	Level      string    // zerolog level name: trace, debug, info, warn, error
	TimeLayout string    // layout for the timestamp column
	Colored    bool      // ANSI colors on the console writer
	JSON       bool      // raw JSON lines instead of the console layout
	Out        io.Writer // defaults to os.Stdout
}

// New builds a zerolog logger wrapped in the logger.Logger adapter
func New(cfg Config) (*ZerologAdapter, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	if cfg.TimeLayout == "" {
		cfg.TimeLayout = time.DateTime
	}

	var writer io.Writer = out
	if !cfg.JSON {
		writer = zerolog.ConsoleWriter{
			Out:           out,
			NoColor:       !cfg.Colored,
			TimeFormat:    cfg.TimeLayout,
			FormatLevel:   formatLevel,
			FormatMessage: formatMessage,
			FormatCaller:  formatCaller,
			FormatTimestamp: func(i any) string {
				return formatTimestamp(i, cfg.TimeLayout)
			},
		}
	}

	l := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return NewAdapter(&l), nil
}

func formatLevel(i any) string {
	switch i {
	case zerolog.LevelTraceValue, zerolog.LevelDebugValue:
		return term.Cyanf("[%3.3s]", strings.ToUpper(i.(string)))
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return term.Redf("[%3.3s]", strings.ToUpper(i.(string)))
	default:
		return term.Whitef("[UNK]")
	}
}

func formatMessage(i any) string {
	const maxSize = 80

	msg, ok := i.(string)
	if !ok || len(msg) == 0 {
		return ">"
	}

	if len(msg) > maxSize {
		msg = msg[:maxSize]
	}

	return term.Whitef("> %-*s", maxSize, msg)
}

func formatCaller(i any) string {
	const maxFileSize = 18
	const maxLineSize = 4

	fname, ok := i.(string)
	if !ok || len(fname) == 0 {
		return ""
	}

	file, line, found := strings.Cut(filepath.Base(fname), ":")
	if !found {
		return file
	}

	if len(file) > maxFileSize {
		file = file[:maxFileSize]
	}

	if len(line) > maxLineSize {
		line = line[len(line)-maxLineSize:]
	}

	return term.Yellowf("[%-*s:%*s]", maxFileSize, file, maxLineSize, line)
}

func formatTimestamp(i any, timeLayout string) string {
	strTime, ok := i.(string)
	if !ok {
		return term.Cyanf("[%s]", i)
	}

	if ts, err := time.ParseInLocation(time.RFC3339, strTime, time.Local); err == nil {
		strTime = ts.In(time.Local).Format(timeLayout)
	}

	return term.Cyanf("[%s]", strTime)
}
