package types

// boxes maps primitive names to their wrapper classes.
var boxes = map[string]string{
	"int":     "java.lang.Integer",
	"long":    "java.lang.Long",
	"short":   "java.lang.Short",
	"byte":    "java.lang.Byte",
	"char":    "java.lang.Character",
	"float":   "java.lang.Float",
	"double":  "java.lang.Double",
	"boolean": "java.lang.Boolean",
}

// Box returns the wrapper type of a primitive, or t itself.
func Box(t Type) Type {
	if b, ok := t.(BasicType); ok {
		if w, ok := boxes[b.Name]; ok {
			return Named(w)
		}
	}
	return t
}

// Unbox returns the primitive of a wrapper type, or t itself.
func Unbox(t Type) Type {
	name := QualifiedName(t)
	for prim, w := range boxes {
		if w == name {
			return BasicType{Name: prim}
		}
	}
	return t
}

// builtinTypes is the part of java.lang the generated code may rely on.
// Apart from Object they are open: the resolver does not know their full
// member lists, so unknown members on them are rendered verbatim.
func builtinTypes() []*TypeInfo {
	object := &TypeInfo{
		Name: "java.lang.Object",
		Methods: []*MethodInfo{
			{Name: "toString", Result: String},
			{Name: "equals", Params: []Type{Object}, Result: Boolean},
			{Name: "hashCode", Result: Int},
		},
	}
	open := func(name string, kind TypeKind, super string, ifaces ...string) *TypeInfo {
		return &TypeInfo{Name: name, Kind: kind, Super: super, Interfaces: ifaces, Open: true}
	}
	infos := []*TypeInfo{
		object,
		open("java.lang.String", KindClass, "", "java.lang.CharSequence", "java.lang.Comparable"),
		open("java.lang.CharSequence", KindInterface, ""),
		open("java.lang.Comparable", KindInterface, ""),
		open("java.lang.Iterable", KindInterface, ""),
		open("java.lang.Runnable", KindInterface, ""),
		open("java.lang.Number", KindClass, ""),
		open("java.lang.Integer", KindClass, "java.lang.Number", "java.lang.Comparable"),
		open("java.lang.Long", KindClass, "java.lang.Number", "java.lang.Comparable"),
		open("java.lang.Short", KindClass, "java.lang.Number", "java.lang.Comparable"),
		open("java.lang.Byte", KindClass, "java.lang.Number", "java.lang.Comparable"),
		open("java.lang.Float", KindClass, "java.lang.Number", "java.lang.Comparable"),
		open("java.lang.Double", KindClass, "java.lang.Number", "java.lang.Comparable"),
		open("java.lang.Character", KindClass, "", "java.lang.Comparable"),
		open("java.lang.Boolean", KindClass, "", "java.lang.Comparable"),
		open("java.lang.Math", KindClass, ""),
		open("java.lang.System", KindClass, ""),
		open("java.lang.StringBuilder", KindClass, "", "java.lang.CharSequence"),
		open("java.lang.Enum", KindClass, "", "java.lang.Comparable"),
		open("java.lang.Throwable", KindClass, ""),
		open("java.lang.Exception", KindClass, "java.lang.Throwable"),
		open("java.lang.RuntimeException", KindClass, "java.lang.Exception"),
		open("java.lang.IllegalArgumentException", KindClass, "java.lang.RuntimeException"),
		open("java.lang.IllegalStateException", KindClass, "java.lang.RuntimeException"),
		open("java.lang.UnsupportedOperationException", KindClass, "java.lang.RuntimeException"),
		open("java.lang.Class", KindClass, ""),
	}
	for _, info := range infos {
		info.Builtin = true
	}
	return infos
}

func registerBuiltins(e *Environment) {
	for _, info := range builtinTypes() {
		// names are unique by construction
		_ = e.Register(info)
	}
}
