package zipkintracer

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

var errNoError = fmt.Errorf("not an error")

// StateLogger is a Logger that logs error only if logErrorInterval have passed
// from the last error, or it is a different error than the last seen.
// The reporter uses it so a collector that keeps failing does not flood the
// log with one line per flush.
type StateLogger struct {
	logger           Logger
	logErrorInterval time.Duration
	clock            clock.Clock
	lastError        error
	lastErrorTime    time.Time
	mutex            sync.Mutex
}

// NewStateLogger creates a new stateLogger
func NewStateLogger(logger Logger, logErrorInterval time.Duration) *StateLogger {
	return newStateLogger(logger, logErrorInterval, clock.New())
}

func newStateLogger(logger Logger, logErrorInterval time.Duration, clk clock.Clock) *StateLogger {
	return &StateLogger{
		logger:           logger,
		logErrorInterval: logErrorInterval,
		clock:            clk,
		lastError:        errNoError,
	}
}

// LogError logs an error if its message differs from the last seen error,
// or that logErrorInterval have passed since the last reported error.
func (se *StateLogger) LogError(err error) {
	se.mutex.Lock()
	defer se.mutex.Unlock()
	now := se.clock.Now()
	if se.lastError != nil && err.Error() == se.lastError.Error() && now.Sub(se.lastErrorTime) < se.logErrorInterval {
		return
	}
	se.logger.Log("err", err.Error())
	se.lastError = err
	se.lastErrorTime = now
}

// Fixed makes the stateLogger understand that the state is fixed, and when
// the next error will occur, it will log it.
func (se *StateLogger) Fixed(keyVal ...interface{}) {
	se.mutex.Lock()
	defer se.mutex.Unlock()
	if se.logErrorInterval == 0 || se.lastError == nil || se.lastError == errNoError {
		return
	}
	se.logger.Log(keyVal...)
	se.lastError = nil
}
