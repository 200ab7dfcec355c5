package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/mydehq/otr/internal/types"
)

// Logger adds a SUCCESS line to the charmbracelet logger
type Logger struct {
	*log.Logger
}

var successLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("86")).
	SetString("SUCCESS")

// NewLogger returns a logger writing to w with the otr level labels
func NewLogger(w io.Writer) *Logger {
	l := log.New(w)

	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Bold(true).
		Foreground(lipgloss.Color("63"))
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO ").
		Bold(true).
		Foreground(lipgloss.Color("86"))
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN ").
		Bold(true).
		Foreground(lipgloss.Color("192"))
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("204"))
	l.SetStyles(styles)

	return &Logger{Logger: l}
}

// Success prints msg with a green SUCCESS prefix. It is suppressed at
// error level, like Info.
func (l *Logger) Success(msg any, keyvals ...any) {
	l.Helper()
	if l.GetLevel() > log.InfoLevel {
		return
	}
	l.Print(fmt.Sprintf("%s %v", successLabel.String(), msg), keyvals...)
}

// SetVerbosity maps the --quiet and --verbose flags to a level
func (l *Logger) SetVerbosity(quiet, verbose bool) {
	switch {
	case quiet:
		l.SetLevel(log.ErrorLevel)
	case verbose:
		l.SetLevel(log.DebugLevel)
	default:
		l.SetLevel(log.InfoLevel)
	}
}

// Events returns a handler that logs engine events at matching levels
func (l *Logger) Events() types.EventHandler {
	return func(e types.Event) {
		switch e.Type {
		case types.EventSuccess:
			l.Success(ColorizeEvent(e.Message))
		case types.EventWarning:
			l.Warn(e.Message)
		case types.EventError:
			l.Error(e.Message)
		case types.EventInfo:
			l.Info(e.Message)
		default:
			l.Debug(e.Message)
		}
	}
}
