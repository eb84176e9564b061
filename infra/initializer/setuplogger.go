package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	infoTxtColor  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnTxtColor  = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorTxtColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugTxtColor = lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
)

var formatters = map[string]log.Formatter{
	"json":   log.JSONFormatter,
	"text":   log.TextFormatter,
	"logfmt": log.LogfmtFormatter,
}

func levelStyle(symbol string, color lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().SetString(symbol).Bold(true).Padding(0, 1).Foreground(color)
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels[log.ErrorLevel] = levelStyle("ERR", errorTxtColor)
	s.Levels[log.WarnLevel] = levelStyle("WRN", warnTxtColor)
	s.Levels[log.InfoLevel] = levelStyle("INF", infoTxtColor)
	s.Levels[log.DebugLevel] = levelStyle("DBG", debugTxtColor)

	keyColors := map[string]lipgloss.AdaptiveColor{
		"error":             errorTxtColor,
		"warning":           warnTxtColor,
		"payment_intent_id": infoTxtColor,
		"event_id":          infoTxtColor,
		"user_id":           debugTxtColor,
	}
	for k, c := range keyColors {
		s.Keys[k] = lipgloss.NewStyle().Foreground(c)
		s.Values[k] = lipgloss.NewStyle().Bold(true)
	}
	return s
}

// SetupLogger builds the process logger from cfg, writing to stdout, and
// installs it as the slog default.
func SetupLogger(cfg *config.Log) *slog.Logger {
	logger := NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// NewLogger builds a charmbracelet handler behind slog. Unknown formats
// fall back to text.
func NewLogger(cfg *config.Log, w io.Writer) *slog.Logger {
	formatter := log.TextFormatter
	if f, ok := formatters[cfg.Format]; ok {
		formatter = f
	}
	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	handler.SetStyles(styles())
	return slog.New(handler)
}
