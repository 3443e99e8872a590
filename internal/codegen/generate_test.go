package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/resolve"
	"martianoff/stjs/internal/types"
	"martianoff/stjs/stjserr"
)

func decodeUnit(t *testing.T, doc string) *ast.CompilationUnit {
	t.Helper()
	u, err := ast.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	return u
}

// generate resolves target against env, after declaring every unit in it,
// and generates it.
func generate(t *testing.T, env *types.Environment, target *ast.CompilationUnit, opts Options, others ...*ast.CompilationUnit) (*Output, error) {
	t.Helper()
	require.Empty(t, resolve.Declare(env, append(others, target)...))
	res, errs := resolve.Resolve(target, env, resolve.Options{AllowedPackages: []string{"org.stjs.javascript"}})
	require.Empty(t, errs, spew.Sdump(errs))
	return Generate(target, res, DefaultRegistry(), opts)
}

func diagnostics(t *testing.T, err error) []string {
	t.Helper()
	var failure *stjserr.UnitFailure
	require.True(t, errors.As(err, &failure), "expected a unit failure, got %v", err)
	var out []string
	for _, e := range failure.Errors {
		var d *stjserr.Diagnostic
		require.True(t, errors.As(e, &d))
		out = append(out, d.Pos.String()+" "+d.Message())
	}
	return out
}

const colorUnit = `
file: Color.java
package: com.example
type:
  kind: enum
  name: Color
  pos: [1, 13]
  constants:
    - {kind: constant, name: RED, pos: [1, 21]}
    - {kind: constant, name: GREEN, pos: [1, 26]}
    - {kind: constant, name: BLUE, pos: [1, 33]}
`

func TestGenerate_EnumLiteral(t *testing.T) {
	out, err := generate(t, types.NewEnvironment(), decodeUnit(t, colorUnit), Options{})
	require.NoError(t, err)
	assert.Equal(t, "var Color = { RED: \"RED\", GREEN: \"GREEN\", BLUE: \"BLUE\" };\n", out.Text)
	assert.Empty(t, out.Dependencies)
	assert.Nil(t, out.Map)
	assert.Equal(t, 1, out.Lines)
}

func TestGenerate_SourceMap(t *testing.T) {
	out, err := generate(t, types.NewEnvironment(), decodeUnit(t, colorUnit), Options{SourceMap: true})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.Text, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "//# sourceMappingURL=Color.map", lines[1])
	assert.Equal(t, 2, out.Lines)

	require.NotNil(t, out.Map)
	assert.Equal(t, "Color.js", out.Map.File)
	assert.Equal(t, []string{"Color.java"}, out.Map.Sources)
	mappings, err := out.Map.Decode()
	require.NoError(t, err)
	require.NotEmpty(t, mappings)
	assert.Equal(t, 0, mappings[0].GenLine)
	assert.Equal(t, 0, mappings[0].GenCol)
	assert.Equal(t, 0, mappings[0].SrcLine)
	assert.Equal(t, 12, mappings[0].SrcCol)
	for _, m := range mappings {
		assert.Equal(t, 0, m.GenLine, "nothing maps onto the link line")
	}
}

const baseUnit = `
file: Base.java
package: com.example
type:
  kind: class
  name: Base
  pos: [3, 14]
  members:
    - kind: field
      name: size
      pos: [4, 19]
      modifiers: [protected]
      type: {kind: type, name: int}
    - kind: constructor
      pos: [5, 12]
      params:
        - {kind: param, name: size, type: {kind: type, name: int}}
      body:
        kind: block
        stmts:
          - kind: expr
            x:
              kind: assign
              left: {kind: select, name: size, pos: [5, 35], x: {kind: this, pos: [5, 30]}}
              right: {kind: name, name: size, pos: [5, 42]}
    - kind: method
      name: describe
      pos: [6, 19]
      result: {kind: type, name: String, pos: [6, 12]}
      body:
        kind: block
        stmts:
          - kind: return
            x: {kind: literal, lit: string, value: base}
`

const shapeUnit = `
file: Shape.java
package: com.example
type:
  kind: class
  name: Shape
  pos: [3, 14]
  extends: {kind: type, name: Base, pos: [3, 28]}
  members:
    - kind: field
      name: sides
      pos: [4, 17]
      type: {kind: type, name: int}
      init: {kind: literal, lit: int, value: "4"}
    - kind: field
      name: count
      pos: [5, 16]
      modifiers: [static]
      type: {kind: type, name: int}
    - kind: constructor
      pos: [6, 12]
      params:
        - {kind: param, name: size, type: {kind: type, name: int}}
      body:
        kind: block
        stmts:
          - kind: expr
            x:
              kind: call
              name: super
              pos: [7, 9]
              args: [{kind: name, name: size, pos: [7, 15]}]
          - kind: expr
            x: {kind: unary, op: "++", postfix: true, x: {kind: name, name: count, pos: [8, 9]}}
    - kind: method
      name: describe
      pos: [10, 19]
      result: {kind: type, name: String, pos: [10, 12]}
      body:
        kind: block
        stmts:
          - kind: return
            x:
              kind: binary
              op: "+"
              left: {kind: literal, lit: string, value: "Shape "}
              right: {kind: call, name: describe, pos: [11, 34], recv: {kind: super, pos: [11, 28]}}
    - kind: method
      name: unit
      pos: [13, 18]
      modifiers: [static]
      result: {kind: type, name: Shape, pos: [13, 12]}
      body:
        kind: block
        stmts:
          - kind: return
            x:
              kind: new
              pos: [14, 16]
              type: {kind: type, name: Shape, pos: [14, 20]}
              args: [{kind: literal, lit: int, value: "1"}]
`

func TestGenerate_Class(t *testing.T) {
	env := types.NewEnvironment()
	base := decodeUnit(t, baseUnit)
	out, err := generate(t, env, decodeUnit(t, shapeUnit), Options{}, base)
	require.NoError(t, err)

	want := `var Shape = function(size) {
    Base.call(this, size);
    this.sides = 4;
    Shape.count++;
};
Shape.prototype = Object.create(Base.prototype);
Shape.prototype.constructor = Shape;
Shape.prototype.describe = function() {
    return "Shape " + Base.prototype.describe.call(this);
};
Shape.unit = function() {
    return new Shape(1);
};
Shape.count = 0;
`
	assert.Equal(t, want, out.Text)
	assert.Equal(t, []string{"com.example.Base"}, out.Dependencies)
}

func TestGenerate_Idempotent(t *testing.T) {
	env := types.NewEnvironment()
	base := decodeUnit(t, baseUnit)
	first, err := generate(t, env, base, Options{SourceMap: true})
	require.NoError(t, err)

	res, errs := resolve.Resolve(base, env, resolve.Options{})
	require.Empty(t, errs)
	second, err := Generate(base, res, DefaultRegistry(), Options{SourceMap: true})
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Map, second.Map)
	assert.Contains(t, first.Text, "this.size = 0;\n    this.size = size;\n")
}

const counterUnit = `
file: Counter.java
package: com.example
type:
  kind: class
  name: Counter
  pos: [1, 14]
  members:
    - {kind: field, name: count, pos: [2, 16], modifiers: [static], type: {kind: type, name: int}}
    - kind: method
      name: next
      pos: [3, 16]
      modifiers: [static]
      result: {kind: type, name: int}
      body:
        kind: block
        stmts:
          - {kind: return, x: {kind: literal, lit: int, value: "1"}}
    - kind: method
      name: plain
      pos: [4, 9]
      result: {kind: type, name: int}
      body:
        kind: block
        stmts:
          - kind: return
            x:
              kind: binary
              op: "+"
              left: {kind: name, name: count, pos: [5, 16]}
              right: {kind: call, name: next, pos: [5, 24]}
    - kind: method
      name: qualified
      pos: [7, 9]
      result: {kind: type, name: int}
      body:
        kind: block
        stmts:
          - kind: return
            x:
              kind: binary
              op: "+"
              left: {kind: select, name: count, pos: [8, 24], x: {kind: name, name: Counter, pos: [8, 16]}}
              right: {kind: call, name: next, pos: [8, 40], recv: {kind: name, name: Counter, pos: [8, 32]}}
`

func TestGenerate_SameSymbolSameText(t *testing.T) {
	out, err := generate(t, types.NewEnvironment(), decodeUnit(t, counterUnit), Options{})
	require.NoError(t, err)

	var returns []string
	for _, line := range strings.Split(out.Text, "\n") {
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "return Counter") {
			returns = append(returns, line)
		}
	}
	require.Len(t, returns, 2, out.Text)
	assert.Equal(t, "return Counter.count + Counter.next();", returns[0])
	assert.Equal(t, returns[0], returns[1])
}

const glyphUnit = `
file: Glyph.java
package: com.example
type:
  kind: class
  name: Glyph
  pos: [1, 14]
  members:
    - {kind: field, name: mark, pos: [2, 10], type: {kind: type, name: char}}
    - {kind: field, name: code, pos: [3, 9], type: {kind: type, name: int}}
    - {kind: field, name: shown, pos: [4, 13], type: {kind: type, name: boolean}}
    - {kind: field, name: label, pos: [5, 12], type: {kind: type, name: String}}
`

func TestGenerate_FieldDefaults(t *testing.T) {
	out, err := generate(t, types.NewEnvironment(), decodeUnit(t, glyphUnit), Options{})
	require.NoError(t, err)

	assert.Contains(t, out.Text, "this.mark = \"\\u0000\";\n")
	assert.Contains(t, out.Text, "this.code = 0;\n")
	assert.Contains(t, out.Text, "this.shown = false;\n")
	assert.Contains(t, out.Text, "this.label = null;\n")
}

const calcUnit = `
file: Calc.java
package: com.example
type:
  kind: class
  name: Calc
  pos: [1, 14]
  members:
    - kind: method
      name: add
      pos: [2, 7]
      result: {kind: type, name: int}
      params:
        - {kind: param, name: a, type: {kind: type, name: int}}
        - {kind: param, name: b, type: {kind: type, name: int}}
      body:
        kind: block
        stmts:
          - kind: return
            x:
              kind: binary
              op: "+"
              left: {kind: name, name: a, pos: [2, 35]}
              right: {kind: name, name: b, pos: [2, 39]}
    - kind: method
      name: add
      pos: [3, 10]
      result: {kind: type, name: double}
      params:
        - {kind: param, name: a, type: {kind: type, name: double}}
        - {kind: param, name: b, type: {kind: type, name: double}}
      body:
        kind: block
        stmts:
          - kind: return
            x:
              kind: cast
              type: {kind: type, name: int}
              x: {kind: name, name: a, pos: [3, 50]}
    - kind: method
      name: log
      pos: [4, 15]
      modifiers: [static]
      params:
        - {kind: param, name: msg, type: {kind: type, name: String, pos: [4, 19]}}
      body: {kind: block}
    - kind: method
      name: run
      pos: [5, 8]
      body:
        kind: block
        stmts:
          - kind: expr
            x:
              kind: call
              name: add
              pos: [6, 5]
              args: [{kind: literal, lit: int, value: "1"}, {kind: literal, lit: long, value: "2L"}]
          - kind: expr
            x:
              kind: call
              name: add
              pos: [7, 5]
              args: [{kind: literal, lit: double, value: "1.0d"}, {kind: literal, lit: int, value: "2"}]
          - kind: expr
            x:
              kind: call
              name: log
              pos: [8, 5]
              args: [{kind: literal, lit: string, value: x}]
          - kind: var
            name: c
            type: {kind: type, name: char}
            init: {kind: literal, lit: char, value: "z"}
          - kind: expr
            x:
              kind: call
              name: log
              pos: [9, 10]
              recv: {kind: name, name: Calc, pos: [9, 5]}
              args: [{kind: literal, lit: string, value: "y"}]
`

func TestGenerate_OverloadNamesAgree(t *testing.T) {
	out, err := generate(t, types.NewEnvironment(), decodeUnit(t, strings.Replace(calcUnit, `value: "2L"`, `value: "2"`, 1)), Options{})
	require.NoError(t, err)

	for _, want := range []string{
		"Calc.prototype.add$int$int = function(a, b) {\n    return a + b;\n};",
		"Calc.prototype.add$double$double = function(a, b) {\n    return (a | 0);\n};",
		"Calc.log = function(msg) {};",
		"    this.add$int$int(1, 2);\n",
		"    this.add$double$double(1.0, 2);\n",
		"    Calc.log(\"x\");\n",
		"    Calc.log(\"y\");\n",
		"    var c = \"z\";\n",
	} {
		assert.Contains(t, out.Text, want)
	}
}

func TestGenerate_LongLiteralWidensToDouble(t *testing.T) {
	out, err := generate(t, types.NewEnvironment(), decodeUnit(t, calcUnit), Options{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "this.add$double$double(1, 2);")
}

const unsupportedUnit = `
file: Odd.java
package: com.example
type:
  kind: class
  name: Odd
  pos: [1, 14]
  members:
    - {kind: constructor, pos: [2, 5], body: {kind: block}}
    - kind: constructor
      pos: [3, 5]
      params:
        - {kind: param, name: n, type: {kind: type, name: int}}
      body: {kind: block}
    - kind: method
      name: check
      pos: [4, 10]
      result: {kind: type, name: boolean}
      params:
        - {kind: param, name: d, type: {kind: type, name: Object, pos: [4, 16]}}
      body:
        kind: block
        stmts:
          - kind: var
            pos: [5, 9]
            name: grid
            type: {kind: type, name: int, rank: 1}
            init:
              kind: newarray
              pos: [5, 20]
              type: {kind: type, name: int}
              dims: [{kind: literal, lit: int, value: "3"}]
          - kind: var
            pos: [6, 9]
            name: ok
            type: {kind: type, name: int, rank: 1}
            init:
              kind: newarray
              pos: [6, 18]
              type: {kind: type, name: int}
              init: {kind: arrayinit, elems: [{kind: literal, lit: int, value: "1"}]}
          - kind: return
            x:
              kind: instanceof
              pos: [7, 18]
              x: {kind: name, name: d, pos: [7, 16]}
              type: {kind: type, name: Drawable, pos: [7, 29]}
`

func TestGenerate_CollectsUnsupportedConstructs(t *testing.T) {
	env := types.NewEnvironment()
	require.NoError(t, env.Decode(strings.NewReader(`
types:
  - name: com.example.Drawable
    kind: interface
`)))
	out, err := generate(t, env, decodeUnit(t, unsupportedUnit), Options{})
	assert.Nil(t, out)
	require.Error(t, err)

	assert.Equal(t, []string{
		"Odd.java:3:5 class 'Odd' declares more than one constructor",
		"Odd.java:5:20 dimensioned array creation has no JavaScript equivalent",
		"Odd.java:7:18 instanceof on interface 'com.example.Drawable' is not supported",
	}, diagnostics(t, err))
}

func TestGenerate_RefusesUnresolvedSites(t *testing.T) {
	u := decodeUnit(t, calcUnit)
	env := types.NewEnvironment()
	require.Empty(t, resolve.Declare(env, u))
	self, ok := env.Lookup("com.example.Calc")
	require.True(t, ok)

	// a resolution without a table: every reference site is missing
	_, err := Generate(u, &resolve.Resolution{Env: env, Self: self}, DefaultRegistry(), Options{})
	require.Error(t, err)
	diags := diagnostics(t, err)
	assert.Contains(t, diags, "Calc.java:2:7 method 'add' has no resolved symbol")
	assert.Contains(t, diags, "Calc.java:2:35 unresolved reference 'a'")
	assert.Contains(t, diags, "Calc.java:6:5 unresolved method 'add'")
}

const syncUnit = `
file: Sync.java
package: com.example
imports:
  - {kind: import, name: org.stjs.javascript.Map, pos: [2, 8]}
type:
  kind: class
  name: Sync
  pos: [4, 14]
  members:
    - kind: method
      name: copy
      pos: [5, 10]
      params:
        - {kind: param, name: src, type: {kind: type, name: Map, pos: [5, 15]}}
        - {kind: param, name: dst, type: {kind: type, name: Map, pos: [5, 24]}}
      body:
        kind: block
        stmts:
          - kind: foreach
            pos: [6, 9]
            type: {kind: type, name: String, pos: [6, 14]}
            name: k
            x:
              kind: call
              name: $get
              pos: [6, 29]
              recv: {kind: name, name: src, pos: [6, 25]}
              args: [{kind: literal, lit: string, value: all}]
            body:
              kind: block
              stmts:
                - kind: expr
                  x:
                    kind: call
                    name: $put
                    pos: [7, 17]
                    recv: {kind: name, name: dst, pos: [7, 13]}
                    args:
                      - {kind: name, name: k, pos: [7, 22]}
                      - kind: call
                        name: $get
                        pos: [7, 29]
                        recv: {kind: name, name: src, pos: [7, 25]}
                        args: [{kind: name, name: k, pos: [7, 34]}]
          - kind: expr
            x:
              kind: call
              name: $delete
              pos: [9, 13]
              recv: {kind: name, name: dst, pos: [9, 9]}
              args: [{kind: literal, lit: string, value: x}]
`

const mapEnv = `
types:
  - name: org.stjs.javascript.Map
    kind: class
    open: true
`

func TestGenerate_Hooks(t *testing.T) {
	tests := []struct {
		name  string
		guard bool
		want  string
	}{
		{
			name: "accessors only",
			want: `Sync.prototype.copy = function(src, dst) {
    for (var k in src["all"]) {
        dst[k] = src[k];
    }
    delete dst["x"];
};
`,
		},
		{
			name:  "with iteration guard",
			guard: true,
			want: `Sync.prototype.copy = function(src, dst) {
    for (var k in src["all"]) {
        if (!(src.$get("all")).hasOwnProperty(k)) continue;
        dst[k] = src[k];
    }
    delete dst["x"];
};
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := types.NewEnvironment()
			require.NoError(t, env.Decode(strings.NewReader(mapEnv)))
			out, err := generate(t, env, decodeUnit(t, syncUnit), Options{IterationGuard: tt.guard})
			require.NoError(t, err)
			assert.Equal(t, "var Sync = function() {};\n"+tt.want, out.Text)
			assert.Empty(t, out.Dependencies)
		})
	}
}

func TestContext_DisableHooksNests(t *testing.T) {
	ctx := &Context{hooksEnabled: true}
	outer := ctx.DisableHooks()
	assert.False(t, ctx.HooksEnabled())
	inner := ctx.DisableHooks()
	inner()
	assert.False(t, ctx.HooksEnabled(), "inner restore keeps the outer state")
	outer()
	assert.True(t, ctx.HooksEnabled())
}

func TestTranslate_VerdictsAndHooks(t *testing.T) {
	var calls []string
	record := func(name string, v Verdict) ContributeFunc {
		return func(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
			calls = append(calls, name)
			if v == Decline {
				return Result{}, v
			}
			return Result{Stmts: append(prev.Stmts, nil)}, v
		}
	}
	reg := NewRegistry()
	reg.Register(ast.KindEmpty, Rule("first", record("first", Partial)))
	reg.Register(ast.KindEmpty, HookRule("hook", record("hook", Partial)))
	reg.Register(ast.KindEmpty, Rule("decline", record("decline", Decline)))
	reg.Register(ast.KindEmpty, Rule("commit", record("commit", Commit)))
	reg.Register(ast.KindEmpty, Rule("never", record("never", Partial)))

	tr := &Translator{reg: reg, ctx: &Context{hooksEnabled: true}}
	res := tr.Translate(&ast.Empty{})
	assert.Equal(t, []string{"first", "hook", "decline", "commit"}, calls)
	assert.Len(t, res.Stmts, 3)

	calls = nil
	restore := tr.ctx.DisableHooks()
	res = tr.Translate(&ast.Empty{})
	restore()
	assert.Equal(t, []string{"first", "decline", "commit"}, calls)
	assert.Len(t, res.Stmts, 2)
}
