package task

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

type countingRunner struct {
	runs   atomic.Int32
	ticks  chan int32
	result error
}

func (r *countingRunner) Run() error {
	count := r.runs.Add(1)
	select {
	case r.ticks <- count:
	default:
	}
	return r.result
}

func nextRun(t *testing.T, ticks <-chan int32) int32 {
	t.Helper()
	select {
	case count := <-ticks:
		return count
	case <-time.After(time.Second):
		t.Fatal("runner did not run")
		return 0
	}
}

func TestStartRunsImmediatelyWithoutInterval(t *testing.T) {
	runner := &countingRunner{ticks: make(chan int32, 1)}
	ticker := NewTickerTask("agent_configs", 0, runner)

	ticker.Start()

	assert.Equal(t, int32(1), runner.runs.Load())
}

func TestRunsOnEveryTick(t *testing.T) {
	clk := clock.NewMock()
	runner := &countingRunner{ticks: make(chan int32, 1), result: errors.New("fetch failed")}
	ticker := newTickerTask("agent_configs", time.Minute, runner, clk)

	ticker.Start()
	defer ticker.Stop()
	assert.Equal(t, int32(1), nextRun(t, runner.ticks))

	clk.Add(time.Minute)
	assert.Equal(t, int32(2), nextRun(t, runner.ticks), "failed runs are retried on the next tick")

	clk.Add(time.Minute)
	assert.Equal(t, int32(3), nextRun(t, runner.ticks))
}

func TestStop(t *testing.T) {
	runner := &countingRunner{ticks: make(chan int32, 1)}
	ticker := newTickerTask("agent_configs", time.Minute, runner, clock.NewMock())

	ticker.Start()
	ticker.Stop()
	ticker.Stop()

	select {
	case <-ticker.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel was not closed")
	}
}
