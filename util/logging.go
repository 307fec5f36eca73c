package util

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SetLogLevel accepts the usual level names and the
// java.util.logging style ones (ALL, FINE, SEVERE, OFF).
// Unknown names fall back to info.
func SetLogLevel(level string, out io.Writer) {
	l, ok := ParseLogLevel(level)
	if !ok {
		fmt.Fprintf(out, "Invalid log level '%s'. Setting log level to 'info'\n", level)
	}

	log.SetLevel(l)
	log.SetOutput(out)
}

func ParseLogLevel(level string) (log.Level, bool) {
	switch strings.ToLower(level) {
	case "all", "finest", "finer", "fine", "config", "debug":
		return log.DebugLevel, true
	case "info":
		return log.InfoLevel, true
	case "warn", "warning":
		return log.WarnLevel, true
	case "error", "severe":
		return log.ErrorLevel, true
	case "off":
		return log.PanicLevel, true
	default:
		return log.InfoLevel, false
	}
}
