package task

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bidconnect/exchange-connector/logger"
)

// Runner is a unit of periodic work, such as reloading agent configurations.
type Runner interface {
	Run() error
}

// TickerTask runs a Runner once on Start and then on every tick of its interval until
// Stop is called. Without a positive interval the runner only runs once.
type TickerTask struct {
	name     string
	interval time.Duration
	runner   Runner
	clock    clock.Clock

	stopOnce sync.Once
	done     chan struct{}
}

func NewTickerTask(name string, interval time.Duration, runner Runner) *TickerTask {
	return newTickerTask(name, interval, runner, clock.New())
}

func newTickerTask(name string, interval time.Duration, runner Runner, clk clock.Clock) *TickerTask {
	return &TickerTask{
		name:     name,
		interval: interval,
		runner:   runner,
		clock:    clk,
		done:     make(chan struct{}),
	}
}

// Start runs the task and, for a positive interval, schedules it in the background.
func (t *TickerTask) Start() {
	t.run()

	if t.interval > 0 {
		go t.runRecurring(t.clock.Ticker(t.interval))
	}
}

// Stop ends the recurring runs. It may be called more than once.
func (t *TickerTask) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

// Done is closed once the task is stopped.
func (t *TickerTask) Done() <-chan struct{} {
	return t.done
}

func (t *TickerTask) run() {
	start := t.clock.Now()
	if err := t.runner.Run(); err != nil {
		logger.Errorf("task %s failed: %v", t.name, err)
		return
	}
	logger.Debugf("task %s ran in %s", t.name, t.clock.Since(start))
}

func (t *TickerTask) runRecurring(ticker *clock.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.run()
		case <-t.done:
			return
		}
	}
}
