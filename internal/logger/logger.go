package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Verbosity tiers accepted by the CLI.
const (
	Minimal = "minimal"
	Light   = "light"
	Heavy   = "heavy"
)

// Tiers lists the accepted verbosity tiers.
var Tiers = []string{Minimal, Light, Heavy}

var Log = logrus.New()

// ParseTier maps a verbosity tier onto a logrus level. Plain logrus level
// names are accepted too.
func ParseTier(tier string) (logrus.Level, error) {
	switch strings.ToLower(tier) {
	case "", Minimal:
		return logrus.InfoLevel, nil
	case Light:
		return logrus.DebugLevel, nil
	case Heavy:
		return logrus.TraceLevel, nil
	}
	lvl, err := logrus.ParseLevel(tier)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("unknown log level %q (want minimal, light or heavy)", tier)
	}
	return lvl, nil
}

// New builds a logger writing to out. format "json" selects the JSON
// formatter; anything else uses text.
func New(out io.Writer, tier, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := ParseTier(tier)
	if err != nil {
		l.WithError(err).Warn("falling back to info level")
	}
	l.SetLevel(lvl)
	return l
}

// Init replaces the process logger used by the command entrypoints.
func Init(tier, format string) *logrus.Logger {
	Log = New(os.Stdout, tier, format)
	return Log
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
