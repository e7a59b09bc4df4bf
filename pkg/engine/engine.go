// Package engine evaluates the sketch description language. It wraps
// zygomys in a sandboxed environment and produces a *sketch.Sketch from
// user source code.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/sketchsolve/pkg/sketch"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a structural finding on a successfully evaluated sketch.
type EvalWarning struct {
	Message      string
	EntityID     sketch.EntityID
	ConstraintID sketch.ConstraintID
	Severity     sketch.ValidationSeverity
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Sketch   *sketch.Sketch
	Errors   []EvalError
	Warnings []EvalWarning
}

// OK reports whether the evaluation produced a sketch without errors.
func (r EvalResult) OK() bool {
	return r.Sketch != nil && len(r.Errors) == 0
}

// Engine wraps the zygomys interpreter for sketch evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism. At most one interpreter runs at a
// time, including one abandoned by a timeout.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	logger     *slog.Logger

	// running holds a token while an interpreter goroutine is alive.
	running chan struct{}
}

// NewEngine creates a new Engine with the default EvalTimeout.
func NewEngine() *Engine {
	return &Engine{
		timeout: EvalTimeout,
		logger:  slog.Default(),
		running: make(chan struct{}, 1),
	}
}

// WithTimeout sets the evaluation time limit. Non-positive values restore
// EvalTimeout.
func (e *Engine) WithTimeout(d time.Duration) *Engine {
	if d <= 0 {
		d = EvalTimeout
	}
	e.timeout = d
	return e
}

// WithLogger sets the logger used for evaluation diagnostics.
// A nil logger restores slog.Default().
func (e *Engine) WithLogger(l *slog.Logger) *Engine {
	if l == nil {
		l = slog.Default()
	}
	e.logger = l
	return e
}

// Evaluate takes sketch source code and produces a new Sketch.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns sketch + nil errors + nil error
//   - On parse/eval failure: returns nil sketch + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*sketch.Sketch, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.timeout
	e.mu.Unlock()

	if err := e.acquire(timeout); err != nil {
		e.logger.Warn("evaluation aborted", "error", err)
		return nil, nil, err
	}

	ch := make(chan evalResult, 1)

	go func() {
		defer e.release()
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{sketch: s, errors: evalErrs, err: err}
	}()

	s, evalErrs, err := e.wait(ch, gen, timeout)
	if err != nil {
		e.logger.Warn("evaluation aborted", "error", err)
	} else if s != nil {
		e.logger.Debug("sketch evaluated",
			"entities", s.EntityCount(),
			"constraints", s.ConstraintCount(),
		)
	}
	return s, evalErrs, err
}

// EvaluateResult evaluates source and validates the resulting sketch,
// reporting validation findings as warnings. A fatal failure is reported
// as a single EvalError so callers get one value to render.
func (e *Engine) EvaluateResult(source string) EvalResult {
	s, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{Errors: []EvalError{{Message: err.Error()}}}
	}
	if len(evalErrs) > 0 {
		return EvalResult{Errors: evalErrs}
	}
	res := EvalResult{Sketch: s}
	for _, v := range sketch.Validate(s) {
		res.Warnings = append(res.Warnings, EvalWarning{
			Message:      v.Message,
			EntityID:     v.EntityID,
			ConstraintID: v.ConstraintID,
			Severity:     v.Severity,
		})
	}
	return res
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*sketch.Sketch, []EvalError, error) {
	// Empty source is a valid program that produces an empty sketch.
	if strings.TrimSpace(source) == "" {
		return sketch.New(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newBuilder()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return b.sketch, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
