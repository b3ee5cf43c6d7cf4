package diagram

import (
	"io"

	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = newDiscardLogger()

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetLogger replaces the package logger. A nil logger silences logging.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = newDiscardLogger()
	}
	logger = l
}

// NewLogger builds the logger used by the command line tools.
func NewLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
	return l, nil
}
