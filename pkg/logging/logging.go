// Package logging provides the logger interface shared by every component in
// this repository.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the interface implemented by loggers used throughout this
// codebase. It extends logrus.FieldLogger with a Writer method that allows
// the logger to be used as an io.Writer target (e.g. for redirecting a
// sub-process's output into the log stream).
type Logger interface {
	logrus.FieldLogger
	// Writer returns a pipe writer whose writes are logged line-by-line.
	Writer() *io.PipeWriter
}

// logger wraps a *logrus.Entry to satisfy Logger.
type logger struct {
	*logrus.Entry
}

// New creates the root Logger for the process. If path is non-empty, logs
// are rotated to disk via lumberjack in addition to stderr. Any extra
// writers (typically the admin log-tail ring buffer) receive every log line
// as well, so /admin/logs can serve recent output without reading the log
// file back off disk.
func New(component string, level logrus.Level, path string, extra ...io.Writer) Logger {
	base := logrus.New()
	base.SetLevel(level)
	base.SetFormatter(&logrus.JSONFormatter{})

	writers := []io.Writer{os.Stderr}
	if path != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}
	writers = append(writers, extra...)
	base.SetOutput(io.MultiWriter(writers...))

	return &logger{base.WithField("component", component)}
}

// WithComponent returns a derived logger tagged with a sub-component name,
// used by collaborators that want to nest under a parent's "component" field.
func WithComponent(parent Logger, component string) Logger {
	return &logger{parent.WithField("subcomponent", component)}
}
