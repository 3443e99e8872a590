package types

// widening lists the primitive widening conversions of each primitive.
var widening = map[string][]string{
	"byte":  {"short", "int", "long", "float", "double"},
	"short": {"int", "long", "float", "double"},
	"char":  {"int", "long", "float", "double"},
	"int":   {"long", "float", "double"},
	"long":  {"float", "double"},
	"float": {"double"},
}

func widens(from, to string) bool {
	if from == to {
		return true
	}
	for _, w := range widening[from] {
		if w == to {
			return true
		}
	}
	return false
}

// Assignable reports whether a value of static type from may be passed where
// to is expected. Unknown types are assignable both ways so that a
// partially typed argument never rules a candidate out.
func (e *Environment) Assignable(from, to Type) bool {
	if from == nil || to == nil || from.IsUnknown() || to.IsUnknown() {
		return true
	}
	from, to = Erasure(from), Erasure(to)
	if Equal(from, to) {
		return true
	}

	if toPrim, ok := to.(BasicType); ok {
		fromPrim, ok := Unbox(from).(BasicType)
		return ok && widens(fromPrim.Name, toPrim.Name)
	}

	switch f := from.(type) {
	case NullType:
		return true
	case VoidType:
		return false
	case BasicType:
		return e.Assignable(Box(f), to)
	case ArrayType:
		if QualifiedName(to) == Object.String() {
			return true
		}
		ta, ok := to.(ArrayType)
		if !ok {
			return false
		}
		if f.Elem.IsPrimitive() || ta.Elem.IsPrimitive() {
			return Equal(f.Elem, ta.Elem)
		}
		return e.Assignable(f.Elem, ta.Elem)
	}

	fromName, toName := QualifiedName(from), QualifiedName(to)
	if fromName == "" || toName == "" {
		return false
	}
	return e.IsSubtype(fromName, toName)
}

// MoreSpecific reports whether every parameter of a is assignable to the
// corresponding parameter of b.
func (e *Environment) MoreSpecific(a, b *MethodInfo) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !e.Assignable(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}
