package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/chazu/sketchsolve/internal/config"
	"github.com/chazu/sketchsolve/pkg/engine"
	"github.com/chazu/sketchsolve/pkg/export"
	"github.com/chazu/sketchsolve/pkg/sketch"
	"github.com/chazu/sketchsolve/pkg/solver"
	"golang.org/x/sync/errgroup"
)

// Report statuses.
const (
	StatusFullyConstrained = "fully-constrained"
	StatusUnderConstrained = "under-constrained"
	StatusOverConstrained  = "over-constrained"
	StatusFailed           = "failed"
	StatusError            = "error" // the source did not evaluate
	StatusValid            = "valid"
	StatusInvalid          = "invalid"
)

// App wires the engine, solver and exporter together. It is safe for
// concurrent use: evaluations are serialized, solves run in parallel.
// An evaluation abandoned on timeout keeps the engine busy until its
// interpreter returns; the next evaluation waits for it or fails with
// engine.ErrBusy.
type App struct {
	// zygomys sandboxes share interpreter globals, so only one
	// evaluation may run at a time.
	evalMu sync.Mutex
	engine *engine.Engine

	solver *solver.Solver
	export export.Options
	logger *slog.Logger
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line     int    `json:"line,omitempty"`
	Col      int    `json:"col,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity,omitempty"`
}

// PointData is a solved point position.
type PointData struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Report is the full result of evaluating and solving one sketch.
type Report struct {
	File         string          `json:"file,omitempty"`
	Status       string          `json:"status"`
	Summary      string          `json:"summary"`
	DOF          int             `json:"dof"`
	Reason       string          `json:"reason,omitempty"`
	Conflicts    []string        `json:"conflicts,omitempty"`
	Variables    int             `json:"variables"`
	Equations    int             `json:"equations"`
	Iterations   int             `json:"iterations"`
	ResidualNorm float64         `json:"residualNorm"`
	Points       []PointData     `json:"points"`
	Errors       []EvalErrorData `json:"errors"`
	Warnings     []EvalErrorData `json:"warnings"`
	DXF          string          `json:"dxf,omitempty"`

	sketch *sketch.Sketch
}

// Solved reports whether the sketch evaluated and the solver converged.
func (r *Report) Solved() bool {
	return r.Status == StatusFullyConstrained || r.Status == StatusUnderConstrained
}

// NewApp creates an App with default settings.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		solver: solver.New(),
		export: export.DefaultOptions(),
		logger: slog.Default(),
	}
}

// NewAppFromConfig creates an App configured by cfg.
func NewAppFromConfig(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		engine: engine.NewEngine().WithTimeout(cfg.EvalTimeout).WithLogger(logger),
		solver: cfg.Solver(logger),
		export: cfg.ExportOptions(),
		logger: logger,
	}
}

// Evaluate takes sketch source, solves it, and returns the report.
func (a *App) Evaluate(source string) *Report {
	report := &Report{
		Points:   []PointData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the source into a sketch.
	a.evalMu.Lock()
	res := a.engine.EvaluateResult(source)
	a.evalMu.Unlock()

	if !res.OK() {
		for _, e := range res.Errors {
			report.Errors = append(report.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		report.Status = StatusError
		report.Summary = "evaluation failed"
		return report
	}

	// Step 2: Structural findings do not stop the solve.
	for _, w := range res.Warnings {
		report.Warnings = append(report.Warnings, EvalErrorData{
			Message:  w.Message,
			Severity: w.Severity.String(),
		})
	}

	// Step 3: Solve in place.
	s := res.Sketch
	result, stats := a.solver.SolveWithStats(s)
	report.sketch = s
	report.Summary = result.String()
	report.Variables = stats.Variables
	report.Equations = stats.Equations
	report.Iterations = stats.Iterations
	report.ResidualNorm = stats.ResidualNorm

	switch r := result.(type) {
	case solver.FullyConstrained:
		report.Status = StatusFullyConstrained
	case solver.UnderConstrained:
		report.Status = StatusUnderConstrained
		report.DOF = r.DOF
	case solver.OverConstrained:
		report.Status = StatusOverConstrained
		for _, id := range r.Conflicts {
			report.Conflicts = append(report.Conflicts, id.String())
		}
	case solver.Failed:
		report.Status = StatusFailed
		report.Reason = r.Reason
	}

	// Step 4: Collect point positions, solved or last attempted.
	for e := range s.Entities() {
		if p, ok := e.(*sketch.Point); ok {
			report.Points = append(report.Points, PointData{
				Name: s.NameOf(p.ID),
				X:    p.Position.X,
				Y:    p.Position.Y,
			})
		}
	}

	return report
}

// SolveFile reads, evaluates and solves the sketch at path. When dxfDir is
// not empty and the sketch evaluated, the result is also drawn to
// dxfDir/<name>.dxf.
func (a *App) SolveFile(path, dxfDir string) (*Report, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sketch: %w", err)
	}

	report := a.Evaluate(string(source))
	report.File = path
	a.logger.Info("sketch solved",
		slog.String("file", path),
		slog.String("status", report.Status),
		slog.Int("iterations", report.Iterations),
	)

	if dxfDir == "" || report.sketch == nil {
		return report, nil
	}
	if err := os.MkdirAll(dxfDir, 0o755); err != nil {
		return nil, fmt.Errorf("create dxf dir: %w", err)
	}
	out := filepath.Join(dxfDir, dxfName(path))
	if err := export.WriteDXF(report.sketch, out, a.export); err != nil {
		if !errors.Is(err, export.ErrUnresolved) {
			return nil, err
		}
		report.Warnings = append(report.Warnings, EvalErrorData{
			Message:  "dxf not written: " + err.Error(),
			Severity: sketch.SeverityWarning.String(),
		})
		return report, nil
	}
	report.DXF = out
	return report, nil
}

// dxfName maps square.sketch to square.dxf.
func dxfName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".dxf"
}

// SolveFiles solves every path, in parallel, and returns the reports in
// argument order. Per-sketch solve failures are reported, not returned;
// the error is for files that cannot be read or written.
func (a *App) SolveFiles(ctx context.Context, paths []string, dxfDir string) ([]*Report, error) {
	reports := make([]*Report, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r, err := a.SolveFile(path, dxfDir)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Validate evaluates source and reports structural findings without
// solving. Error-severity findings make the report invalid.
func (a *App) Validate(source string) *Report {
	report := &Report{
		Points:   []PointData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	a.evalMu.Lock()
	res := a.engine.EvaluateResult(source)
	a.evalMu.Unlock()

	if !res.OK() {
		for _, e := range res.Errors {
			report.Errors = append(report.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		report.Status = StatusError
		report.Summary = "evaluation failed"
		return report
	}

	report.Status = StatusValid
	for _, w := range res.Warnings {
		data := EvalErrorData{Message: w.Message, Severity: w.Severity.String()}
		if w.Severity == sketch.SeverityError {
			report.Status = StatusInvalid
			report.Errors = append(report.Errors, data)
			continue
		}
		report.Warnings = append(report.Warnings, data)
	}
	s := res.Sketch
	report.Variables = 2 * s.PointCount()
	report.Equations = s.EquationCount()
	report.DOF = report.Variables - report.Equations
	report.Summary = fmt.Sprintf("%d entities, %d constraints, %d DOF before solving",
		s.EntityCount(), s.ConstraintCount(), report.DOF)
	return report
}

// ValidateFile reads and validates the sketch at path.
func (a *App) ValidateFile(path string) (*Report, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sketch: %w", err)
	}
	report := a.Validate(string(source))
	report.File = path
	return report, nil
}
