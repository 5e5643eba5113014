package main

import (
	"os"

	"github.com/charmbracelet/log"
)

// charmLogger adapts charmbracelet/log to the chatclient.Logger interface.
type charmLogger struct {
	l *log.Logger
}

func newLogger(verbose bool) charmLogger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "chatcli",
	})
	l.SetLevel(log.WarnLevel)
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return charmLogger{l: l}
}

func (c charmLogger) Info(msg string)  { c.l.Info(msg) }
func (c charmLogger) Warn(msg string)  { c.l.Warn(msg) }
func (c charmLogger) Error(msg string) { c.l.Error(msg) }
