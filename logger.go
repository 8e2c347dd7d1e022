package zipkintracer

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger interface used by this package.
// This means that we accept Go kit Log compatible loggers
type Logger interface {
	Log(keyvals ...interface{}) error
}

// LoggerFunc takes care of making a logger function compatible with the
// Logger interface.
type LoggerFunc func(keyvals ...interface{}) error

// Log implements Logger
func (f LoggerFunc) Log(keyvals ...interface{}) error {
	return f(keyvals...)
}

type nopLogger struct{}

func (nopLogger) Log(keyvals ...interface{}) error { return nil }

// NewNopLogger provides a Logger that discards all log data sent to it.
func NewNopLogger() Logger {
	return nopLogger{}
}

// NewZapLogger returns a Logger writing to l. The value of a "msg" key, if
// any, becomes the entry message and the remaining pairs become fields.
// Entries holding an "err" key are logged at error level, others at info.
func NewZapLogger(l *zap.Logger) Logger {
	sugar := l.Sugar()
	return LoggerFunc(func(keyvals ...interface{}) error {
		var (
			msg    string
			isErr  bool
			fields = make([]interface{}, 0, len(keyvals))
		)
		if len(keyvals)%2 == 1 {
			keyvals = append(keyvals, "(MISSING)")
		}
		for i := 0; i < len(keyvals); i += 2 {
			key := fmt.Sprint(keyvals[i])
			switch key {
			case "msg":
				msg = fmt.Sprint(keyvals[i+1])
				continue
			case "err":
				isErr = true
			}
			fields = append(fields, key, keyvals[i+1])
		}
		if isErr {
			sugar.Errorw(msg, fields...)
		} else {
			sugar.Infow(msg, fields...)
		}
		return nil
	})
}
