package types

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libDoc = `
types:
  - name: com.lib.Shape
    kind: interface
    methods:
      - {name: area, result: double}
  - name: com.lib.Base
    fields:
      - {name: count, type: int}
    methods:
      - {name: add, params: [int], result: int}
      - {name: add, params: [java.lang.String], result: java.lang.String}
      - {name: add, params: ["int[]"]}
    constructors:
      - {params: [int]}
  - name: com.lib.Derived
    super: com.lib.Base
    interfaces: [com.lib.Shape]
    methods:
      - {name: add, params: [int], result: int}
      - {name: area, result: double}
  - name: com.lib.Color
    kind: enum
    namespace: lib
    constants: [RED, GREEN]
`

func libEnv(t *testing.T) *Environment {
	t.Helper()
	env := NewEnvironment()
	require.NoError(t, env.Decode(strings.NewReader(libDoc)))
	return env
}

func names(chain []*TypeInfo) []string {
	out := make([]string, len(chain))
	for i, info := range chain {
		out[i] = info.Name
	}
	return out
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"int", Int},
		{"void", Void},
		{"", Unknown},
		{"?", Unknown},
		{"java.lang.String", String},
		{"Local", NamedType{Name: "Local"}},
		{"int[][]", ArrayType{Elem: ArrayType{Elem: Int}}},
		{"java.util.List<java.lang.String>", GenericType{Base: Named("java.util.List"), Params: []Type{String}}},
		{"java.util.Map<java.lang.String, java.util.List<int[]>>", GenericType{
			Base: Named("java.util.Map"),
			Params: []Type{
				String,
				GenericType{Base: Named("java.util.List"), Params: []Type{ArrayType{Elem: Int}}},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseType(tt.in))
		})
	}
	assert.Equal(t, "java.util.Map<java.lang.String, java.util.List<int[]>>",
		ParseType("java.util.Map<java.lang.String,java.util.List<int[]>>").String())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Shape", SimpleName("com.lib.Shape"))
	assert.Equal(t, "com.lib", PackageOf("com.lib.Shape"))
	assert.Equal(t, "", PackageOf("Shape"))
	assert.Equal(t, "java.lang.Integer", QualifiedName(Box(Int)))
	assert.Equal(t, Char, Unbox(Named("java.lang.Character")))
	assert.Equal(t, String, Unbox(String))
	assert.True(t, IsIntegral(Char))
	assert.False(t, IsIntegral(Double))
	assert.True(t, IsNumeric(Float))
	assert.False(t, IsNumeric(Boolean))
}

func TestDecode(t *testing.T) {
	env := libEnv(t)

	base, ok := env.Lookup("com.lib.Base")
	require.True(t, ok)
	assert.Equal(t, KindClass, base.Kind)
	require.Len(t, base.Constructors, 1)
	assert.Equal(t, "<init>", base.Constructors[0].Name)
	assert.Equal(t, "com.lib.Base", base.Constructors[0].Owner)
	assert.Equal(t, Void, base.Methods[2].Result)

	color, ok := env.Lookup("com.lib.Color")
	require.True(t, ok)
	assert.Equal(t, KindEnum, color.Kind)
	assert.Equal(t, "lib.Color", color.TargetName())
	shape, ok := env.Lookup("com.lib.Shape")
	require.True(t, ok)
	assert.Equal(t, "Shape", shape.TargetName())

	assert.True(t, env.HasPackage("com.lib"))
	assert.True(t, env.HasPackage("com"))
	assert.False(t, env.HasPackage("com.li"))
}

func TestDecodeErrors(t *testing.T) {
	env := NewEnvironment()
	err := env.Decode(strings.NewReader("types:\n  - kind: class\n"))
	assert.ErrorContains(t, err, "type #1: missing name")

	err = env.Decode(strings.NewReader("types:\n  - {name: a.B, kind: record}\n"))
	assert.ErrorContains(t, err, `unknown type kind "record"`)

	err = env.Decode(strings.NewReader("types:\n  - {name: java.lang.Object}\n"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "java.lang.Object", conflict.Name)

	assert.NoError(t, env.Decode(strings.NewReader("")))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(libDoc), 0o644))

	env := NewEnvironment()
	require.NoError(t, env.LoadFile(path))
	_, ok := env.Lookup("com.lib.Derived")
	assert.True(t, ok)

	err := env.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "opening environment")
}

func TestOverlay(t *testing.T) {
	base := libEnv(t)
	child := base.Overlay()

	require.NoError(t, child.Register(&TypeInfo{Name: "com.app.Main"}))
	require.NoError(t, child.Register(&TypeInfo{Name: "com.lib.Base", Kind: KindInterface}))
	assert.Error(t, child.Register(&TypeInfo{Name: "com.app.Main"}))
	assert.Error(t, child.Register(&TypeInfo{}))

	_, ok := base.Lookup("com.app.Main")
	assert.False(t, ok)
	assert.False(t, base.HasPackage("com.app"))
	assert.True(t, child.HasPackage("com.app"))

	shadow, _ := child.Lookup("com.lib.Base")
	assert.Equal(t, KindInterface, shadow.Kind)
	orig, _ := base.Lookup("com.lib.Base")
	assert.Equal(t, KindClass, orig.Kind)

	assert.Contains(t, child.Names(), "com.app.Main")
	assert.NotContains(t, base.Names(), "com.app.Main")
}

func TestHierarchy(t *testing.T) {
	env := libEnv(t)

	chain, complete := env.Hierarchy("com.lib.Derived")
	assert.True(t, complete)
	assert.Equal(t, []string{"com.lib.Derived", "com.lib.Base", "com.lib.Shape", "java.lang.Object"}, names(chain))

	_, complete = env.Hierarchy("java.lang.Integer")
	assert.False(t, complete)

	_, complete = env.Hierarchy("com.lib.Missing")
	assert.False(t, complete)

	assert.True(t, env.IsSubtype("com.lib.Derived", "com.lib.Shape"))
	assert.True(t, env.IsSubtype("com.lib.Derived", "com.lib.Base"))
	assert.False(t, env.IsSubtype("com.lib.Base", "com.lib.Shape"))
	assert.True(t, env.IsSubtype("com.lib.Base", "java.lang.Object"))
}

func TestFindField(t *testing.T) {
	env := libEnv(t)

	f, complete := env.FindField("com.lib.Derived", "count")
	require.NotNil(t, f)
	assert.True(t, complete)
	assert.Equal(t, "com.lib.Base", f.Owner)
	assert.Equal(t, Int, f.Type)

	c, _ := env.FindField("com.lib.Color", "RED")
	require.NotNil(t, c)
	assert.True(t, c.Static)
	assert.Equal(t, Named("com.lib.Color"), c.Type)

	f, complete = env.FindField("com.lib.Derived", "missing")
	assert.Nil(t, f)
	assert.True(t, complete)

	f, complete = env.FindField("java.lang.String", "missing")
	assert.Nil(t, f)
	assert.False(t, complete)
}

func TestMethodsAndTargetName(t *testing.T) {
	env := libEnv(t)

	adds, complete := env.Methods("com.lib.Derived", "add")
	assert.True(t, complete)
	require.Len(t, adds, 3)
	assert.Equal(t, "com.lib.Derived", adds[0].Owner)
	assert.Equal(t, "com.lib.Base", adds[1].Owner)

	assert.Equal(t, "add$int", env.TargetName("com.lib.Derived", adds[0]))
	assert.Equal(t, "add$String", env.TargetName("com.lib.Derived", adds[1]))
	assert.Equal(t, "add$intArray", env.TargetName("", adds[2]))

	areas, _ := env.Methods("com.lib.Derived", "area")
	require.Len(t, areas, 1)
	assert.Equal(t, "area", env.TargetName("com.lib.Derived", areas[0]))

	toString, _ := env.Methods("com.lib.Derived", "toString")
	require.Len(t, toString, 1)
	assert.Equal(t, "java.lang.Object", toString[0].Owner)
}

func TestAssignable(t *testing.T) {
	env := libEnv(t)
	derived, base, shape := Named("com.lib.Derived"), Named("com.lib.Base"), Named("com.lib.Shape")

	tests := []struct {
		name     string
		from, to Type
		want     bool
	}{
		{"widening", Int, Long, true},
		{"narrowing", Long, Int, false},
		{"char to int", Char, Int, true},
		{"boxing", Int, Box(Int), true},
		{"unboxing", Box(Int), Long, true},
		{"null to reference", Null, String, true},
		{"null to primitive", Null, Int, false},
		{"void", Void, Object, false},
		{"unknown", Unknown, Int, true},
		{"subclass", derived, base, true},
		{"interface", derived, shape, true},
		{"unrelated", base, shape, false},
		{"array to object", ArrayType{Elem: Int}, Object, true},
		{"primitive arrays", ArrayType{Elem: Int}, ArrayType{Elem: Long}, false},
		{"covariant arrays", ArrayType{Elem: derived}, ArrayType{Elem: base}, true},
		{"erased generic", GenericType{Base: Named("java.util.List"), Params: []Type{String}}, Named("java.util.List"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.Assignable(tt.from, tt.to))
		})
	}
}

func TestMoreSpecific(t *testing.T) {
	env := NewEnvironment()
	byInt := &MethodInfo{Name: "f", Params: []Type{Int}}
	byLong := &MethodInfo{Name: "f", Params: []Type{Long}}
	byTwo := &MethodInfo{Name: "f", Params: []Type{Int, Int}}

	assert.True(t, env.MoreSpecific(byInt, byLong))
	assert.False(t, env.MoreSpecific(byLong, byInt))
	assert.False(t, env.MoreSpecific(byInt, byTwo))
	assert.Equal(t, "f(int,int)", byTwo.Signature())
}
