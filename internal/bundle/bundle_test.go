package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stjs/internal/emit"
	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/sourcemap"
	"martianoff/stjs/stjserr"
)

func unit(id string, deps ...string) *emit.Unit {
	return &emit.Unit{ID: id, Text: "var " + id + " = {};\n", Dependencies: deps}
}

// mappedUnit has one mapping per line of text plus one past its end.
func mappedUnit(id string, lines int, deps ...string) *emit.Unit {
	g := sourcemap.NewGenerator(id + ".js")
	text := ""
	for i := 0; i < lines; i++ {
		text += "var " + id + i2s(i) + " = 0;\n"
		g.AddPosition(i, 0, source.At(id+".java", i+1, 1))
	}
	g.AddPosition(lines, 0, source.At(id+".java", lines+1, 1))
	text += sourcemap.Comment(id+".map") + "\n"
	return &emit.Unit{ID: id, Text: text, Dependencies: deps, Map: g.Map()}
}

func i2s(i int) string {
	return string(rune('0' + i))
}

func TestBundle_TopologicalOrder(t *testing.T) {
	a, err := Bundle([]*emit.Unit{unit("A", "B"), unit("B", "C"), unit("C")}, Options{Name: "app"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, a.Order)
	assert.Equal(t, "var C = {};\nvar B = {};\nvar A = {};\n", a.Text)
	assert.Nil(t, a.Map)
}

func TestBundle_TiesKeepFirstSeenOrder(t *testing.T) {
	units := []*emit.Unit{unit("Z"), unit("M", "Z"), unit("A"), unit("K", "A")}
	order, err := Order(units)
	require.NoError(t, err)
	assert.Equal(t, "Z", order[0])
	assert.Less(t, indexOf(order, "Z"), indexOf(order, "M"))
	assert.Less(t, indexOf(order, "A"), indexOf(order, "K"))
	assert.Len(t, order, 4)

	independent, err := Order([]*emit.Unit{unit("Y"), unit("X"), unit("W")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "X", "W"}, independent)
}

func TestOrder_FrontierIsFIFO(t *testing.T) {
	order, err := Order([]*emit.Unit{unit("A", "B"), unit("B"), unit("C")})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, order)
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}

func TestBundle_IgnoresSelfAndOutsideDependencies(t *testing.T) {
	a, err := Bundle([]*emit.Unit{unit("A", "A", "java.lang.Missing"), unit("B", "A")}, Options{Name: "app"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, a.Order)

	// Environment-only bridge types never become units.
	a, err = Bundle([]*emit.Unit{unit("App", "org.stjs.bridge.Window", "Util"), unit("Util")}, Options{Name: "app"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Util", "App"}, a.Order)
	assert.Equal(t, "var Util = {};\nvar App = {};\n", a.Text)
}

func TestBundle_Cycle(t *testing.T) {
	units := []*emit.Unit{unit("A", "B"), unit("B", "C"), unit("C", "A"), unit("D")}
	a, err := Bundle(units, Options{Name: "app"})
	assert.Nil(t, a)

	var ce *CycleError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Cycles, 1)
	assert.Equal(t, []string{"A", "B", "C"}, ce.Cycles[0])
	assert.Equal(t, stjserr.TypeCycle, ce.Type())
	assert.Contains(t, err.Error(), "A -> B -> C")
}

func TestBundle_DisjointCycles(t *testing.T) {
	units := []*emit.Unit{unit("P", "Q"), unit("A", "B"), unit("B", "A"), unit("Q", "P")}
	_, err := Bundle(units, Options{Name: "app"})
	var ce *CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, [][]string{{"P", "Q"}, {"A", "B"}}, ce.Cycles)
}

func TestBundle_DuplicateUnit(t *testing.T) {
	_, err := Bundle([]*emit.Unit{unit("A"), unit("A")}, Options{Name: "app"})
	assert.Error(t, err)
}

func TestBundle_BannerAndStitchedMap(t *testing.T) {
	units := []*emit.Unit{mappedUnit("A", 2, "B"), mappedUnit("B", 3), unit("C")}
	a, err := Bundle(units, Options{Name: "app", Banner: []string{"// app"}, SourceMap: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, a.Order)

	assert.Equal(t, "// app\n"+
		"var B0 = 0;\nvar B1 = 0;\nvar B2 = 0;\n"+
		"var C = {};\n"+
		"var A0 = 0;\nvar A1 = 0;\n"+
		"//# sourceMappingURL=app.map\n", a.Text)

	require.NotNil(t, a.Map)
	assert.Equal(t, "app.js", a.Map.File)
	require.Len(t, a.Map.Sections, 2)
	assert.Equal(t, 1, a.Map.Sections[0].Offset.Line)
	assert.Equal(t, 5, a.Map.Sections[1].Offset.Line)

	for i, want := range []int{3, 2} {
		ms, err := a.Map.Sections[i].Map.Decode()
		require.NoError(t, err)
		assert.Len(t, ms, want)
		for _, m := range ms {
			assert.Less(t, m.GenLine, want)
		}
	}
}

func TestArtifact_Write(t *testing.T) {
	a, err := Bundle([]*emit.Unit{mappedUnit("A", 1)}, Options{Name: "app", SourceMap: true})
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := a.Write(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app.js"), path)

	text, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, a.Text, string(text))

	data, err := os.ReadFile(filepath.Join(dir, "app.map"))
	require.NoError(t, err)
	ix, err := sourcemap.ParseIndex(data)
	require.NoError(t, err)
	assert.Len(t, ix.Sections, 1)
}

func TestStitcher_RebasesSources(t *testing.T) {
	g := sourcemap.NewGenerator("Base.js")
	g.AddPosition(0, 0, source.At("Base.java", 1, 1))
	g.AddPosition(1, 0, source.At("../../../src/com/example/Base.java", 2, 1))
	g.AddPosition(2, 0, source.At("/abs/Base.java", 3, 1))
	u := &emit.Unit{ID: "com.example.Base", Map: g.Map()}

	st := NewStitcher("app.js")
	require.NoError(t, st.Add(0, 3, u))
	require.NoError(t, st.Add(3, 1, mappedUnit("Top", 1)))

	sections := st.Map().Sections
	require.Len(t, sections, 2)
	assert.Equal(t, []string{"com/example/Base.java", "../src/com/example/Base.java", "/abs/Base.java"}, sections[0].Map.Sources)
	assert.Equal(t, []string{"Top.java"}, sections[1].Map.Sources)

	// the unit's own map is left as written
	assert.Equal(t, "Base.java", u.Map.Sources[0])
}

func TestStitcher_RebasesSourceRoot(t *testing.T) {
	g := sourcemap.NewGenerator("Base.js")
	g.AddPosition(0, 0, source.At("Base.java", 1, 1))
	m := g.Map()
	m.SourceRoot = "../src/"

	st := NewStitcher("app.js")
	require.NoError(t, st.Add(0, 1, &emit.Unit{ID: "com.example.Base", Map: m}))
	sec := st.Map().Sections[0].Map
	assert.Equal(t, "com/src/", sec.SourceRoot)
	assert.Equal(t, []string{"Base.java"}, sec.Sources)
}
