// Package logging builds the leveled logger used by the CLI and handed to
// the load test core.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Log levels accepted by New.
const (
	LevelNone  = "none"
	LevelError = "error"
	LevelWarn  = "warn"
	LevelInfo  = "info"
	LevelDebug = "debug"
)

// Log formats accepted by New.
const (
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

// New returns a logger writing to w in the given format, filtered to
// logLevel. Every entry carries a UTC timestamp and the caller.
func New(w io.Writer, logLevel, format string) (log.Logger, error) {
	var logger log.Logger

	switch strings.ToLower(format) {
	case FormatLogfmt, "":
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case FormatJSON:
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	option, err := levelOption(logLevel)
	if err != nil {
		return nil, err
	}

	logger = level.NewFilter(logger, option)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	return logger, nil
}

func levelOption(logLevel string) (level.Option, error) {
	switch strings.ToLower(logLevel) {
	case LevelNone:
		return level.AllowNone(), nil
	case LevelError:
		return level.AllowError(), nil
	case LevelWarn, "":
		return level.AllowWarn(), nil
	case LevelInfo:
		return level.AllowInfo(), nil
	case LevelDebug:
		return level.AllowDebug(), nil
	default:
		return nil, fmt.Errorf("unknown log level %q", logLevel)
	}
}
