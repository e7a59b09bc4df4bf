package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// errUnsolved is returned when at least one sketch did not solve or validate.
var errUnsolved = errors.New("sketches did not solve")

// writeReports prints reports as text or, with jsonOut, as one JSON array.
func writeReports(w io.Writer, reports []*Report, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode reports: %w", err)
		}
		return nil
	}
	for _, r := range reports {
		writeReport(w, r)
	}
	return nil
}

func writeReport(w io.Writer, r *Report) {
	name := r.File
	if name == "" {
		name = "<source>"
	}
	if r.Iterations > 0 {
		fmt.Fprintf(w, "%s: %s (%d iterations, residual %.3g)\n", name, r.Summary, r.Iterations, r.ResidualNorm)
	} else {
		fmt.Fprintf(w, "%s: %s\n", name, r.Summary)
	}
	for _, p := range r.Points {
		fmt.Fprintf(w, "  %s = (%.6g, %.6g)\n", p.Name, p.X, p.Y)
	}
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "  error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "  error: %s\n", e.Message)
		}
	}
	for _, e := range r.Warnings {
		fmt.Fprintf(w, "  %s: %s\n", e.Severity, e.Message)
	}
	if r.DXF != "" {
		fmt.Fprintf(w, "  dxf: %s\n", r.DXF)
	}
}

// checkReports returns errUnsolved, with a count, if any report failed ok.
func checkReports(reports []*Report, ok func(*Report) bool) error {
	bad := 0
	for _, r := range reports {
		if !ok(r) {
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d %w", bad, len(reports), errUnsolved)
	}
	return nil
}
