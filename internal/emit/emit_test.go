package emit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/sourcemap"
)

func shapeUnit(withMap bool) *Unit {
	u := &Unit{
		ID:           "com.example.Shape",
		Source:       "src/com/example/Shape.java",
		Text:         "var Shape = function() {};\n",
		Dependencies: []string{"com.example.Base"},
	}
	if withMap {
		g := sourcemap.NewGenerator("Shape.js")
		g.AddPosition(0, 0, source.At("Shape.java", 3, 1))
		u.Map = g.Map()
		u.Text += sourcemap.Comment("Shape.map") + "\n"
	}
	return u
}

func TestHash(t *testing.T) {
	lf := Hash([]byte("a\nb\n"))
	assert.Equal(t, lf, Hash([]byte("a\r\nb\r\n")))
	assert.Equal(t, lf, Hash([]byte("a\rb\r")))
	assert.NotEqual(t, lf, Hash([]byte("a\nb")))
	assert.Regexp(t, `^h1:[A-Za-z0-9+/]{43}=$`, lf)
}

func TestPathsFor(t *testing.T) {
	p := PathsFor("out", "com.example.Shape")
	assert.Equal(t, filepath.Join("out", "com", "example", "Shape.js"), p.JS)
	assert.Equal(t, filepath.Join("out", "com", "example", "Shape.map"), p.Map)
	assert.Equal(t, filepath.Join("out", "com", "example", "Shape.stjs"), p.Manifest)

	assert.Equal(t, filepath.Join("out", "Main.js"), PathsFor("out", "Main").JS)
}

func TestUnit_BodyAndLines(t *testing.T) {
	u := shapeUnit(true)
	assert.Equal(t, 2, u.Lines())
	assert.Equal(t, "var Shape = function() {};\n", u.Body())
	assert.Equal(t, "Shape", u.SimpleName())

	legacy := &Unit{Text: "var A = 1;\n//@ sourceMappingURL=A.map"}
	assert.Equal(t, 2, legacy.Lines())
	assert.Equal(t, "var A = 1;\n", legacy.Body())

	assert.Equal(t, 0, (&Unit{}).Lines())
	assert.Equal(t, "", (&Unit{}).Body())
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	root := t.TempDir()
	u := shapeUnit(true)

	p, err := Write(root, u)
	require.NoError(t, err)
	for _, f := range []string{p.JS, p.Map, p.Manifest} {
		assert.FileExists(t, f)
	}

	got, err := Load(root, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	m, err := ReadManifest(p.Manifest)
	require.NoError(t, err)
	assert.Equal(t, Hash([]byte(u.Text)), m.Hash)
	assert.True(t, m.HasMap)
}

func TestWrite_WithoutMap(t *testing.T) {
	root := t.TempDir()
	p, err := Write(root, shapeUnit(false))
	require.NoError(t, err)
	assert.NoFileExists(t, p.Map)

	got, err := Load(root, "com.example.Shape")
	require.NoError(t, err)
	assert.Nil(t, got.Map)
}

func TestLoad_Stale(t *testing.T) {
	root := t.TempDir()
	p, err := Write(root, shapeUnit(false))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p.JS, []byte("var Shape = 1;\n"), 0o644))

	_, err = Load(root, "com.example.Shape")
	var stale *StaleError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, "com.example.Shape", stale.Unit)
	assert.Equal(t, Hash([]byte("var Shape = 1;\n")), stale.Actual)
}

func TestLoadAll(t *testing.T) {
	root := t.TempDir()
	_, err := Write(root, &Unit{ID: "b.B", Text: "var B = 1;\n", Dependencies: []string{}})
	require.NoError(t, err)
	_, err = Write(root, &Unit{ID: "a.A", Text: "var A = 1;\n", Dependencies: []string{"b.B"}})
	require.NoError(t, err)
	stale, err := Write(root, &Unit{ID: "c.C", Text: "var C = 1;\n", Dependencies: []string{}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(stale.JS, []byte("var C = 2;\n"), 0o644))

	units, errs := LoadAll(root)
	require.Len(t, units, 2)
	assert.Equal(t, "a.A", units[0].ID)
	assert.Equal(t, "b.B", units[1].ID)
	require.Len(t, errs, 1)
	var se *StaleError
	assert.ErrorAs(t, errs[0], &se)
}

func TestWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.js")
	require.NoError(t, WriteFile(path, []byte("one")))
	require.NoError(t, WriteFile(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomic_FailureKeepsCloseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.js")
	fillErr := errors.New("encoder failed")

	err := writeAtomic(path, func(f *os.File) error {
		require.NoError(t, f.Close())
		return fillErr
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fillErr)
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.Contains(t, err.Error(), "closing")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
