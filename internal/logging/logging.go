// Package logging holds the process-wide zerolog logger. Commands tune it
// at startup via SetLogLevel and SetLogOutput; everything else just logs
// through L.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var L zerolog.Logger

var logFile *os.File

func init() {
	L = zerolog.New(consoleWriter()).With().Timestamp().Caller().Logger()
}

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
}

func SetLogLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// SetLogOutput mirrors log output into a file under dir while keeping the
// console writer. Callers should defer Close.
func SetLogOutput(dir, name string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return err
	}
	logFile = f
	L = zerolog.New(io.MultiWriter(consoleWriter(), f)).With().Timestamp().Caller().Logger()
	return nil
}

// DisableConsole routes all output to the log file only. SetLogOutput must
// have been called first; otherwise logging is silenced entirely.
func DisableConsole() {
	if logFile == nil {
		L = zerolog.New(io.Discard).With().Timestamp().Logger()
		return
	}
	L = zerolog.New(logFile).With().Timestamp().Caller().Logger()
}

func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
