package codegen

import (
	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/resolve"
	"martianoff/stjs/internal/sourcemap"
	"martianoff/stjs/stjserr"
)

// Options configures generation.
type Options struct {
	// IterationGuard injects a hasOwnProperty check into for-each loops.
	IterationGuard bool
	// SourceMap builds a map for the unit and links it from the last line.
	SourceMap bool
	// MaxDiagnostics caps the diagnostics kept per unit.
	MaxDiagnostics int
}

// Output is the generated code of one unit.
type Output struct {
	Unit         string
	Text         string
	Lines        int
	Dependencies []string
	Map          *sourcemap.Map // nil unless requested
}

// DefaultRegistry installs the default rules. Optional hooks are registered
// ahead of the rule they refine when they replace it, and after it when
// they decorate its result.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ast.KindUnit, Rule("unit", unitRule))
	r.Register(ast.KindClass, Rule("class", classRule))
	r.Register(ast.KindInterface, Rule("interface", interfaceRule))
	r.Register(ast.KindEnum, Rule("enum", enumRule))
	r.Register(ast.KindField, Rule("field", fieldRule))
	r.Register(ast.KindMethod, Rule("method", methodRule))
	r.Register(ast.KindInitializer, Rule("initializer", initializerRule))

	for _, k := range []ast.Kind{
		ast.KindBlock, ast.KindLocalVar, ast.KindExprStmt, ast.KindIf, ast.KindWhile,
		ast.KindDoWhile, ast.KindFor, ast.KindSwitch, ast.KindReturn, ast.KindBreak,
		ast.KindContinue, ast.KindThrow, ast.KindTry, ast.KindEmpty,
	} {
		r.Register(k, Rule("statement", statementRule))
	}
	r.Register(ast.KindForEach, Rule("foreach", forEachRule))
	r.Register(ast.KindForEach, HookRule("iteration-guard", iterationGuard))

	r.Register(ast.KindMethodCall, HookRule("map-access", mapAccessHook))
	for _, k := range []ast.Kind{
		ast.KindName, ast.KindFieldAccess, ast.KindMethodCall, ast.KindLiteral,
		ast.KindUnary, ast.KindBinary, ast.KindAssign, ast.KindConditional,
		ast.KindCast, ast.KindInstanceOf, ast.KindNew, ast.KindNewArray,
		ast.KindArrayInit, ast.KindIndex, ast.KindLambda, ast.KindThis,
		ast.KindSuper, ast.KindClassLit, ast.KindParen,
	} {
		r.Register(k, Rule("expression", expressionRule))
	}
	return r
}

// Generate translates a resolved unit. Any diagnostic fails the whole unit:
// the error is a *stjserr.UnitFailure holding every diagnostic and no output
// is returned.
func Generate(unit *ast.CompilationUnit, res *resolve.Resolution, reg *Registry, opts Options) (*Output, error) {
	id := unit.QualifiedName()
	if res == nil || res.Self == nil {
		bag := stjserr.NewBag(opts.MaxDiagnostics)
		bag.Add(stjserr.NewGenerationError(unit.Pos(), "unit '%s' was not resolved", id))
		return nil, bag.Err(id)
	}
	if reg == nil {
		reg = DefaultRegistry()
	}

	ctx := newContext(res, id, unit.File, opts)
	t := &Translator{reg: reg, ctx: ctx}
	body := t.Translate(unit).Stmts

	if ctx.bag.HasErrors() {
		ctx.bag.Dedup()
		ctx.bag.Sort()
		return nil, ctx.bag.Err(id)
	}

	var gen *sourcemap.Generator
	if opts.SourceMap {
		gen = sourcemap.NewGenerator(res.Self.SimpleName() + ".js")
	}
	p := NewPrinter(gen)
	for _, s := range body {
		p.Stmt(s)
	}
	out := &Output{Unit: id, Dependencies: ctx.Dependencies()}
	if gen != nil {
		out.Map = gen.Map()
		p.Line(sourcemap.Comment(res.Self.SimpleName() + ".map"))
	}
	out.Text = p.String()
	out.Lines = p.Lines()
	return out, nil
}
