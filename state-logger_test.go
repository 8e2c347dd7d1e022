package zipkintracer

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateLoggerComparesErrorMessages(t *testing.T) {
	logs := &logRecorder{}
	l := newStateLogger(logs, time.Second, clock.NewMock())

	// distinct values, same message
	l.LogError(errors.New("connection refused"))
	l.LogError(errors.New("connection refused"))
	l.LogError(errors.New("timeout"))

	assert.Equal(t, [][]interface{}{
		{"err", "connection refused"},
		{"err", "timeout"},
	}, logs.all())
}

func TestStateLoggerRepeatsAfterInterval(t *testing.T) {
	logs := &logRecorder{}
	clk := clock.NewMock()
	l := newStateLogger(logs, time.Second, clk)
	err := errors.New("connection refused")

	l.LogError(err)
	clk.Add(999 * time.Millisecond)
	l.LogError(err)
	if want, have := 1, len(logs.all()); want != have {
		t.Fatalf("want %d, have %d", want, have)
	}

	clk.Add(time.Millisecond)
	l.LogError(err)
	if want, have := 2, len(logs.all()); want != have {
		t.Fatalf("want %d, have %d", want, have)
	}

	// the interval restarts from the last logged occurrence
	clk.Add(500 * time.Millisecond)
	l.LogError(err)
	if want, have := 2, len(logs.all()); want != have {
		t.Errorf("want %d, have %d", want, have)
	}
}

func TestStateLoggerFixed(t *testing.T) {
	logs := &logRecorder{}
	l := newStateLogger(logs, time.Minute, clock.NewMock())
	err := errors.New("connection refused")

	l.Fixed("msg", "recovered")
	assert.Empty(t, logs.all(), "nothing failed yet")

	l.LogError(err)
	l.Fixed("msg", "recovered")
	l.Fixed("msg", "recovered")
	require.Len(t, logs.all(), 2)
	assert.Equal(t, []interface{}{"msg", "recovered"}, logs.all()[1])

	// after recovery the same error is news again
	l.LogError(err)
	require.Len(t, logs.all(), 3)
	assert.Equal(t, []interface{}{"err", "connection refused"}, logs.all()[2])
}

func TestStateLoggerWithoutInterval(t *testing.T) {
	logs := &logRecorder{}
	l := newStateLogger(logs, 0, clock.NewMock())
	err := errors.New("connection refused")

	l.LogError(err)
	l.LogError(err)
	l.Fixed("msg", "recovered")
	if want, have := 2, len(logs.all()); want != have {
		t.Errorf("want %d, have %d", want, have)
	}
}

func TestReporterRateLimitsFlushErrors(t *testing.T) {
	logs := &logRecorder{}
	clk := clock.NewMock()
	c := &stubCollector{err: errors.New("unreachable")}
	r := newReporter(c, nil,
		ReporterClock(clk),
		ReporterLogger(logs),
		ReporterLogErrorInterval(5*time.Second),
	)

	for i := 0; i < 3; i++ {
		r.lazyFlush()
	}
	if want, have := 1, len(logs.all()); want != have {
		t.Fatalf("want %d, have %d", want, have)
	}

	clk.Add(5 * time.Second)
	r.lazyFlush()
	if want, have := 2, len(logs.all()); want != have {
		t.Fatalf("want %d, have %d", want, have)
	}

	c.err = nil
	r.lazyFlush()
	r.lazyFlush()
	require.Len(t, logs.all(), 3)
	assert.Equal(t, []interface{}{"msg", "collector recovered"}, logs.all()[2])
	assert.Equal(t, 5, c.lazy)
}
