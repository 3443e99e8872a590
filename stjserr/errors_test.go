package stjserr_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stjs/internal/source"
	"martianoff/stjs/stjserr"
)

func TestDiagnostic(t *testing.T) {
	err := stjserr.NewResolutionError(source.At("A.java", 10, 5), "cannot resolve symbol '%s'", "x")
	assert.Equal(t, stjserr.TypeResolution, err.Type())
	assert.Equal(t, source.At("A.java", 10, 5), err.Position())
	assert.Equal(t, "cannot resolve symbol 'x'", err.Message())
	assert.Equal(t, "[ResolutionError] A.java:10:5 cannot resolve symbol 'x'", err.Error())
}

func TestDiagnosticNoPosition(t *testing.T) {
	err := stjserr.NewGenerationError(source.Position{}, "unit has no type")
	assert.Equal(t, stjserr.TypeGeneration, err.Type())
	assert.Equal(t, "[GenerationError] unit has no type", err.Error())
}

func TestDiagnosticMessageIsNotAFormat(t *testing.T) {
	err := stjserr.NewUnsupportedError(source.At("A.java", 1, 1), "100% unsupported")
	assert.Equal(t, "100% unsupported", err.Message())
}

func TestIOError(t *testing.T) {
	err := stjserr.NewIOError(source.Position{File: "A.java"}, errors.New("permission denied"))
	assert.Equal(t, stjserr.TypeIO, err.Type())
	assert.Equal(t, "[IOError] A.java permission denied", err.Error())
}

func TestConfigError(t *testing.T) {
	err := stjserr.NewConfigError("stjs.toml", "missing [project].name")
	assert.Equal(t, stjserr.TypeConfig, err.Type())
	assert.Equal(t, "[ConfigError] stjs.toml: missing [project].name", err.Error())

	bare := stjserr.NewConfigError("", "jobs must be at least %d", 1)
	assert.Equal(t, "[ConfigError] jobs must be at least 1", bare.Error())
}

func TestMultiError(t *testing.T) {
	e1 := stjserr.NewUnsupportedError(source.At("A.java", 1, 1), "error 1")
	e2 := stjserr.NewResolutionError(source.At("A.java", 2, 2), "error 2")
	multi := &stjserr.MultiError{Errors: []error{e1, e2}}

	assert.Equal(t, stjserr.TypeUnsupported, multi.Type())
	errMsg := multi.Error()
	assert.Contains(t, errMsg, "2 error(s) occurred:")
	assert.Contains(t, errMsg, "- [UnsupportedError] A.java:1:1 error 1")
	assert.Contains(t, errMsg, "- [ResolutionError] A.java:2:2 error 2")
}

func TestMultiErrorEmpty(t *testing.T) {
	multi := &stjserr.MultiError{Errors: []error{}}
	assert.Equal(t, stjserr.ErrorType("MultiError"), multi.Type())
	assert.True(t, strings.HasPrefix(multi.Error(), "0 error(s) occurred:"))
}

func TestBag_CapAndDropped(t *testing.T) {
	bag := stjserr.NewBag(2)
	for i := 1; i <= 4; i++ {
		bag.Add(stjserr.NewResolutionError(source.At("A.java", i, 1), "e%d", i))
	}
	assert.Equal(t, 2, bag.Len())
	assert.Equal(t, 2, bag.Dropped())

	assert.True(t, bag.Add(nil))
	assert.Equal(t, 2, bag.Len())
}

func TestBag_DefaultCap(t *testing.T) {
	for _, max := range []int{0, -1, 1 << 20} {
		t.Run(fmt.Sprint(max), func(t *testing.T) {
			bag := stjserr.NewBag(max)
			for i := 0; i < stjserr.DefaultMaxDiagnostics+5; i++ {
				bag.Add(errors.New("x"))
			}
			assert.Equal(t, stjserr.DefaultMaxDiagnostics, bag.Len())
			assert.Equal(t, 5, bag.Dropped())
		})
	}
}

func TestBag_SortAndDedup(t *testing.T) {
	bag := stjserr.NewBag(0)
	bag.AddAll([]error{
		errors.New("no position"),
		stjserr.NewUnsupportedError(source.At("B.java", 1, 1), "b"),
		stjserr.NewResolutionError(source.At("A.java", 7, 3), "late"),
		stjserr.NewResolutionError(source.At("A.java", 2, 9), "early"),
		stjserr.NewResolutionError(source.At("A.java", 7, 3), "late"),
		stjserr.NewUnsupportedError(source.At("A.java", 7, 3), "late"),
	})
	bag.Dedup()
	bag.Sort()

	var got []string
	for _, err := range bag.Items() {
		got = append(got, err.Error())
	}
	assert.Equal(t, []string{
		"[ResolutionError] A.java:2:9 early",
		"[ResolutionError] A.java:7:3 late",
		"[UnsupportedError] A.java:7:3 late",
		"[UnsupportedError] B.java:1:1 b",
		"no position",
	}, got)
}

func TestBag_Err(t *testing.T) {
	bag := stjserr.NewBag(0)
	assert.NoError(t, bag.Err("com.example.A"))

	bag.Add(stjserr.NewUnsupportedError(source.At("A.java", 3, 1), "labelled break"))
	err := bag.Err("com.example.A")
	var uf *stjserr.UnitFailure
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, "com.example.A", uf.Unit)
	assert.Equal(t, stjserr.TypeUnsupported, uf.Type())
	assert.Equal(t, "com.example.A: 1 error(s)\n  [UnsupportedError] A.java:3:1 labelled break", err.Error())

	var d *stjserr.Diagnostic
	assert.ErrorAs(t, err, &d)
}

func TestBag_ErrCarriesDropped(t *testing.T) {
	bag := stjserr.NewBag(1)
	bag.Add(stjserr.NewResolutionError(source.At("A.java", 1, 1), "first"))
	bag.Add(stjserr.NewResolutionError(source.At("A.java", 2, 1), "second"))
	bag.Add(stjserr.NewResolutionError(source.At("A.java", 3, 1), "third"))

	err := bag.Err("com.example.A")
	var uf *stjserr.UnitFailure
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, 2, uf.Dropped)
	assert.Equal(t, "com.example.A: 1 error(s)\n  [ResolutionError] A.java:1:1 first\n  2 more diagnostic(s) dropped", err.Error())

	r := &stjserr.Report{}
	r.Add(err)
	diags := r.Diagnostics()
	require.Len(t, diags, 2)
	assert.EqualError(t, diags[1], "com.example.A: 2 more diagnostic(s) dropped")
}

func TestBag_AddFailure(t *testing.T) {
	bag := stjserr.NewBag(0)
	bag.AddFailure(nil)
	bag.AddFailure(&stjserr.UnitFailure{Unit: "A", Errors: []error{errors.New("a1"), errors.New("a2")}, Dropped: 3})
	bag.AddFailure(errors.New("plain"))

	assert.Equal(t, 3, bag.Len())
	assert.Equal(t, 3, bag.Dropped())
}

func TestReport(t *testing.T) {
	r := &stjserr.Report{Generated: 3, Elapsed: 42 * time.Millisecond}
	assert.False(t, r.Failed())
	r.Add(nil)
	assert.False(t, r.Failed())

	r.Add(&stjserr.UnitFailure{Unit: "A", Errors: []error{errors.New("a1"), errors.New("a2")}})
	r.Add(errors.New("bundle"))
	assert.True(t, r.Failed())
	assert.Len(t, r.Diagnostics(), 3)
	assert.Equal(t, "Generated 3 JavaScript files in 42 ms", r.Summary())
}
