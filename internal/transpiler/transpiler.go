// Package transpiler runs one compilation unit through resolution and
// generation.
package transpiler

import (
	"errors"

	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/codegen"
	"martianoff/stjs/internal/emit"
	"martianoff/stjs/internal/resolve"
	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/types"
	"martianoff/stjs/stjserr"
)

// Resolver builds the resolution table of a unit. The resolution is
// returned even alongside an error, as a best-effort partial table.
type Resolver interface {
	Resolve(unit *ast.CompilationUnit) (*resolve.Resolution, error)
}

// CodeGenerator generates JavaScript from a resolved unit.
type CodeGenerator interface {
	Generate(unit *ast.CompilationUnit, res *resolve.Resolution) (*codegen.Output, error)
}

// Transpiler defines the high-level interface for the unit to JavaScript
// conversion.
type Transpiler interface {
	Transpile(unit *ast.CompilationUnit) (*emit.Unit, error)
}

// JavaToJSTranspiler orchestrates the transpilation process.
type JavaToJSTranspiler struct {
	resolver  Resolver
	generator CodeGenerator
	max       int
}

// NewJavaToJSTranspiler creates a new instance of JavaToJSTranspiler with its dependencies.
func NewJavaToJSTranspiler(resolver Resolver, generator CodeGenerator) *JavaToJSTranspiler {
	return &JavaToJSTranspiler{
		resolver:  resolver,
		generator: generator,
	}
}

// Options configures the default pipeline.
type Options struct {
	Resolve  resolve.Options
	Generate codegen.Options
	// Registry overrides the default generation rules.
	Registry *codegen.Registry
}

// New returns the default pipeline over env. env is only read; every unit
// resolves in its own overlay.
func New(env *types.Environment, opts Options) *JavaToJSTranspiler {
	reg := opts.Registry
	if reg == nil {
		reg = codegen.DefaultRegistry()
	}
	t := NewJavaToJSTranspiler(
		&envResolver{env: env, opts: opts.Resolve, max: opts.Generate.MaxDiagnostics},
		&engine{reg: reg, opts: opts.Generate},
	)
	t.max = opts.Generate.MaxDiagnostics
	return t
}

// Transpile executes the full transpilation pipeline. Generation runs on the
// partial resolution even when resolution failed, so one
// *stjserr.UnitFailure lists the diagnostics of both phases. Any diagnostic
// suppresses the output.
func (t *JavaToJSTranspiler) Transpile(unit *ast.CompilationUnit) (*emit.Unit, error) {
	res, resErr := t.resolver.Resolve(unit)
	if resErr != nil && (res == nil || res.Self == nil) {
		return nil, t.merge(unit, resErr, nil)
	}

	out, genErr := t.generator.Generate(unit, res)
	if resErr != nil || genErr != nil {
		return nil, t.merge(unit, resErr, genErr)
	}

	return &emit.Unit{
		ID:           out.Unit,
		Source:       unit.File,
		Text:         out.Text,
		Dependencies: out.Dependencies,
		Map:          out.Map,
	}, nil
}

type envResolver struct {
	env  *types.Environment
	opts resolve.Options
	max  int
}

// merge folds the failures of both phases into one UnitFailure. A site the
// resolver already reported is not reported again as a generation refusal.
func (t *JavaToJSTranspiler) merge(unit *ast.CompilationUnit, resErr, genErr error) error {
	bag := stjserr.NewBag(t.max)
	bag.AddFailure(resErr)

	reported := make(map[source.Position]bool)
	for _, err := range bag.Items() {
		var d *stjserr.Diagnostic
		if errors.As(err, &d) && d.Type() == stjserr.TypeResolution {
			reported[d.Position()] = true
		}
	}
	bag.AddFailure(withoutRefusals(genErr, reported))

	bag.Dedup()
	bag.Sort()
	return bag.Err(unitID(unit))
}

func withoutRefusals(err error, reported map[source.Position]bool) error {
	var uf *stjserr.UnitFailure
	if len(reported) == 0 || !errors.As(err, &uf) {
		return err
	}
	kept := &stjserr.UnitFailure{Unit: uf.Unit, Dropped: uf.Dropped}
	for _, e := range uf.Errors {
		var d *stjserr.Diagnostic
		if errors.As(e, &d) && d.Type() == stjserr.TypeGeneration && reported[d.Position()] {
			continue
		}
		kept.Errors = append(kept.Errors, e)
	}
	return kept
}

func unitID(unit *ast.CompilationUnit) string {
	if unit == nil || unit.Type == nil {
		return "<unknown>"
	}
	return unit.QualifiedName()
}

func (r *envResolver) Resolve(unit *ast.CompilationUnit) (*resolve.Resolution, error) {
	res, errs := resolve.Resolve(unit, r.env, r.opts)
	if len(errs) == 0 {
		return res, nil
	}
	bag := stjserr.NewBag(r.max)
	bag.AddAll(errs)
	bag.Dedup()
	bag.Sort()
	return res, bag.Err(unitID(unit))
}

type engine struct {
	reg  *codegen.Registry
	opts codegen.Options
}

func (g *engine) Generate(unit *ast.CompilationUnit, res *resolve.Resolution) (*codegen.Output, error) {
	return codegen.Generate(unit, res, g.reg, g.opts)
}

// IsUnitFailure reports whether err carries per-unit diagnostics rather
// than an infrastructure failure.
func IsUnitFailure(err error) bool {
	var uf *stjserr.UnitFailure
	return errors.As(err, &uf)
}

// Ensure the default pipeline implements the interfaces.
var (
	_ Transpiler    = (*JavaToJSTranspiler)(nil)
	_ Resolver      = (*envResolver)(nil)
	_ CodeGenerator = (*engine)(nil)
)
