package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/sketchsolve/pkg/sketch"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// ErrSuperseded is returned when a newer Evaluate call started while this
// one was running.
var ErrSuperseded = errors.New("evaluation superseded by newer request")

// ErrBusy is returned when an earlier evaluation, abandoned after a
// timeout, is still running when the next one would start.
var ErrBusy = errors.New("previous evaluation still running")

type evalResult struct {
	sketch *sketch.Sketch
	errors []EvalError
	err    error
}

// wait blocks for the outcome of evaluation gen. A result that arrives
// after a newer evaluation has started is dropped. On timeout the
// evaluating goroutine is abandoned; its result lands in the buffered
// channel and is never read.
func (e *Engine) wait(ch <-chan evalResult, gen uint64, timeout time.Duration) (*sketch.Sketch, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		stale := gen != e.generation
		e.mu.Unlock()
		if stale {
			return nil, nil, ErrSuperseded
		}
		return res.sketch, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}

// acquire takes the interpreter token, waiting at most timeout for an
// abandoned evaluation to finish.
func (e *Engine) acquire(timeout time.Duration) error {
	select {
	case e.running <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case e.running <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBusy
	}
}

func (e *Engine) release() { <-e.running }
