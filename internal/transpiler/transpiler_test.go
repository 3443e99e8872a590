package transpiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/codegen"
	"martianoff/stjs/internal/resolve"
	"martianoff/stjs/internal/types"
	"martianoff/stjs/stjserr"
)

const colorUnit = `
file: src/com/example/Color.java
package: com.example
type:
  kind: enum
  name: Color
  pos: [1, 13]
  constants:
    - {kind: constant, name: RED, pos: [1, 21]}
    - {kind: constant, name: GREEN, pos: [1, 26]}
`

const brokenUnit = `
file: Broken.java
package: com.example
type:
  kind: class
  name: Broken
  pos: [1, 14]
  members:
    - kind: method
      name: run
      pos: [2, 10]
      result: {kind: type, name: void}
      body:
        kind: block
        stmts:
          - kind: expr
            x: {kind: name, name: nowhere, pos: [3, 9]}
          - kind: var
            pos: [4, 9]
            name: grid
            type: {kind: type, name: int, rank: 1}
            init:
              kind: newarray
              pos: [4, 20]
              type: {kind: type, name: int}
              dims: [{kind: literal, lit: int, value: "3"}]
`

func decode(t *testing.T, doc string) *ast.CompilationUnit {
	t.Helper()
	u, err := ast.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	return u
}

func TestTranspile_Default(t *testing.T) {
	tr := New(types.NewEnvironment(), Options{Generate: codegen.Options{SourceMap: true}})
	u, err := tr.Transpile(decode(t, colorUnit))
	require.NoError(t, err)

	assert.Equal(t, "com.example.Color", u.ID)
	assert.Equal(t, "src/com/example/Color.java", u.Source)
	assert.True(t, strings.HasPrefix(u.Text, `var Color = { RED: "RED", GREEN: "GREEN" };`))
	assert.True(t, strings.HasSuffix(u.Text, "//# sourceMappingURL=Color.map\n"))
	require.NotNil(t, u.Map)
	assert.Equal(t, "Color.js", u.Map.File)
}

func TestTranspile_ReportsEveryPhase(t *testing.T) {
	gen := &countingGenerator{}
	tr := NewJavaToJSTranspiler(&envResolver{env: types.NewEnvironment()}, gen)

	u, err := tr.Transpile(decode(t, brokenUnit))
	assert.Nil(t, u)
	require.True(t, IsUnitFailure(err))
	assert.Equal(t, 1, gen.calls)

	var uf *stjserr.UnitFailure
	require.True(t, errors.As(err, &uf))
	assert.Equal(t, "com.example.Broken", uf.Unit)

	var got []string
	for _, e := range uf.Errors {
		got = append(got, e.Error())
	}
	assert.Equal(t, []string{
		"[ResolutionError] Broken.java:3:9 cannot resolve symbol 'nowhere'",
		"[UnsupportedError] Broken.java:4:20 dimensioned array creation has no JavaScript equivalent",
	}, got)
}

func TestTranspile_UnresolvedUnitSkipsGeneration(t *testing.T) {
	gen := &countingGenerator{}
	tr := NewJavaToJSTranspiler(&envResolver{env: types.NewEnvironment()}, gen)

	_, err := tr.Transpile(&ast.CompilationUnit{File: "Empty.java"})
	require.True(t, IsUnitFailure(err))
	assert.Zero(t, gen.calls)
	assert.Contains(t, err.Error(), "unit declares no type")
}

func TestTranspile_EnvironmentIsNotModified(t *testing.T) {
	env := types.NewEnvironment()
	tr := New(env, Options{})
	_, err := tr.Transpile(decode(t, colorUnit))
	require.NoError(t, err)

	_, found := env.Lookup("com.example.Color")
	assert.False(t, found)
}

func TestIsUnitFailure(t *testing.T) {
	assert.False(t, IsUnitFailure(errors.New("disk full")))
	assert.False(t, IsUnitFailure(nil))
}

type countingGenerator struct {
	calls int
}

func (g *countingGenerator) Generate(unit *ast.CompilationUnit, res *resolve.Resolution) (*codegen.Output, error) {
	g.calls++
	return codegen.Generate(unit, res, nil, codegen.Options{})
}
