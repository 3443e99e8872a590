package stjserr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// UnitFailure aggregates every diagnostic of one compilation unit.
// Dropped counts the diagnostics that did not fit under the cap.
type UnitFailure struct {
	Unit    string
	Errors  []error
	Dropped int
}

func (f *UnitFailure) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %d error(s)", f.Unit, len(f.Errors)))
	for _, err := range f.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	if f.Dropped > 0 {
		sb.WriteString("\n  ")
		sb.WriteString(f.droppedMessage())
	}
	return sb.String()
}

func (f *UnitFailure) droppedMessage() string {
	return fmt.Sprintf("%d more diagnostic(s) dropped", f.Dropped)
}

func (f *UnitFailure) Type() ErrorType {
	if len(f.Errors) > 0 {
		var se StjsError
		if errors.As(f.Errors[0], &se) {
			return se.Type()
		}
	}
	return "UnitFailure"
}

func (f *UnitFailure) Unwrap() []error {
	return f.Errors
}

// Report is the end-of-run summary over all units.
type Report struct {
	Generated int
	Failures  []error
	Elapsed   time.Duration
}

// Failed reports whether any unit or the bundling step failed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Add appends a failure; nil is ignored.
func (r *Report) Add(err error) {
	if err != nil {
		r.Failures = append(r.Failures, err)
	}
}

// Diagnostics flattens unit failures into their individual errors.
func (r *Report) Diagnostics() []error {
	var out []error
	for _, err := range r.Failures {
		var uf *UnitFailure
		if errors.As(err, &uf) {
			out = append(out, uf.Errors...)
			if uf.Dropped > 0 {
				out = append(out, fmt.Errorf("%s: %s", uf.Unit, uf.droppedMessage()))
			}
			continue
		}
		out = append(out, err)
	}
	return out
}

func (r *Report) Summary() string {
	return fmt.Sprintf("Generated %d JavaScript files in %d ms", r.Generated, r.Elapsed.Milliseconds())
}
