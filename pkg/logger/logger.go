// Package logger provides the pipeline's leveled logging, backed by
// logrus, plus the ASCII-art Banner/Section helpers carried over from
// the original hand-rolled logger.
//
// Adapted from the original pkg/logger: SetLevel/Debug/Info/Warn/Error
// keep their call-site shape so the rest of the codebase didn't need
// to change, but the level filtering and formatting is now delegated
// to a package-level *logrus.Logger instead of a hand-rolled ANSI
// color table, matching the structured-logging texture used elsewhere
// in the example pack.
package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	ColorReset = "\033[0m"
	ColorCyan  = "\033[36m"
	ColorGreen = "\033[32m"
)

var defaultLogger = logrus.New()

func init() {
	defaultLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	defaultLogger.SetLevel(logrus.InfoLevel)
}

// Entry returns the shared *logrus.Logger for callers that want
// structured fields (logger.Entry().WithField("sequence", seq).Info(...)).
func Entry() *logrus.Logger { return defaultLogger }

// SetLevel sets the minimum log level by name ("debug", "info",
// "warn", "error"); an unrecognized name is treated as "info".
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	defaultLogger.SetLevel(parsed)
}

func Debug(format string, args ...interface{}) { defaultLogger.Debugf(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Infof(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warnf(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Errorf(format, args...) }

// Fatal logs at error level and exits 1 (kept distinct from
// logrus.Fatal so the exit path is explicit here, not buried in a
// library call).
func Fatal(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
	os.Exit(1)
}

// Section prints a section header to stdout directly; it is a visual
// aid for demo output, not a log record.
func Section(title string) {
	border := "═══════════════════════════════════════════════════════════"
	fmt.Printf("\n%s╔%s╗%s\n", ColorCyan, border, ColorReset)
	fmt.Printf("%s║%s %-57s %s║%s\n", ColorCyan, ColorReset, title, ColorCyan, ColorReset)
	fmt.Printf("%s╚%s╝%s\n\n", ColorCyan, border, ColorReset)
}

// Banner prints the application banner.
func Banner(title, version string) {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   ██████╗██╗   ██╗██████╗ ███████╗███████╗██╗   ██╗███╗   ██╗ ██████╗
║  ██╔════╝██║   ██║██╔══██╗██╔════╝██╔════╝╚██╗ ██╔╝████╗  ██║██╔════╝
║  ██║     ██║   ██║██████╔╝█████╗  ███████╗ ╚████╔╝ ██╔██╗ ██║██║
║  ██║     ██║   ██║██╔══██╗██╔══╝  ╚════██║  ╚██╔╝  ██║╚██╗██║██║
║  ╚██████╗╚██████╔╝██████╔╝███████╗███████║   ██║   ██║ ╚████║╚██████╗
║   ╚═════╝ ╚═════╝ ╚═════╝ ╚══════╝╚══════╝   ╚═╝   ╚═╝  ╚═══╝ ╚═════╝
║                                                           ║
║              %s%-37s%s║
║                    %sVersion %-7s%s                      ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, ColorCyan, title, ColorReset, ColorGreen, version, ColorReset)
}
