// Package logger prints tagged, human-oriented console output.
//
// Every line carries a tag naming the subsystem ("CATALOG", "FETCH", ...).
// Output goes through a zerolog ConsoleWriter so levels, timestamps and
// colors stay consistent with the rest of the run.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
)

const bannerText = "Arrow Trader"

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
	log           = newLogger(os.Stdout)
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func newLogger(w io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    !isTerminal(w),
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			"tag",
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{"tag"},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%v", i)
		},
	}
	return zerolog.New(cw).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// SetOutput redirects all subsequent output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	log = newLogger(w)
}

// SetLevel sets the minimum level: debug, info, warn or error. Unknown values mean info.
func SetLevel(level string) {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func current() (zerolog.Logger, io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	return log, out
}

func tagged(tag string) string {
	return "[" + strings.ToUpper(tag) + "]"
}

// Debug logs a debug line.
func Debug(tag, msg string) {
	l, _ := current()
	l.Debug().Str("tag", tagged(tag)).Msg(msg)
}

// Info logs an informational line.
func Info(tag, msg string) {
	l, _ := current()
	l.Info().Str("tag", tagged(tag)).Msg(msg)
}

// Success logs a completed step.
func Success(tag, msg string) {
	l, _ := current()
	l.Info().Str("tag", tagged(tag)).Msg("✔ " + msg)
}

// Warn logs a recoverable problem.
func Warn(tag, msg string) {
	l, _ := current()
	l.Warn().Str("tag", tagged(tag)).Msg(msg)
}

// Error logs a failure.
func Error(tag, msg string) {
	l, _ := current()
	l.Error().Str("tag", tagged(tag)).Msg(msg)
}

// Banner prints the startup art and version.
func Banner(version string) {
	_, w := current()
	art := figure.NewFigure(bannerText, "", false).String()
	fmt.Fprintln(w)
	fmt.Fprintln(w, art)
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\tVersion: %s\n\n", version)
}

// Section prints a section heading.
func Section(title string) {
	_, w := current()
	fmt.Fprintf(w, "\n── %s ──\n", title)
}

// Stats prints one aligned key/value line under a section.
func Stats(key string, value interface{}) {
	_, w := current()
	fmt.Fprintf(w, "  %-24s %v\n", key+":", value)
}
