// Package types models the source language's static types and the symbol
// environment the resolver works against.
package types

import (
	"strings"
)

// Type represents a structured source-language type.
type Type interface {
	String() string
	IsUnknown() bool
	IsPrimitive() bool
	BaseName() string
	GetPackage() string // Returns the package of the type, or "" if none
}

// BasicType represents a primitive type like int, boolean, char.
type BasicType struct {
	Name string
}

func (t BasicType) String() string     { return t.Name }
func (t BasicType) IsUnknown() bool    { return false }
func (t BasicType) IsPrimitive() bool  { return true }
func (t BasicType) BaseName() string   { return t.Name }
func (t BasicType) GetPackage() string { return "" }

// NamedType represents a class, interface or enum, package-qualified when known.
type NamedType struct {
	Package string
	Name    string
}

func (t NamedType) String() string {
	if t.Package != "" {
		return t.Package + "." + t.Name
	}
	return t.Name
}
func (t NamedType) IsUnknown() bool    { return false }
func (t NamedType) IsPrimitive() bool  { return false }
func (t NamedType) BaseName() string   { return t.String() }
func (t NamedType) GetPackage() string { return t.Package }

// GenericType represents a parameterized type like List<String>.
type GenericType struct {
	Base   Type
	Params []Type
}

func (t GenericType) String() string {
	var sb strings.Builder
	sb.WriteString(t.Base.String())
	sb.WriteByte('<')
	for i, p := range t.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p != nil {
			sb.WriteString(p.String())
		}
	}
	sb.WriteByte('>')
	return sb.String()
}
func (t GenericType) IsUnknown() bool    { return false }
func (t GenericType) IsPrimitive() bool  { return false }
func (t GenericType) BaseName() string   { return t.Base.BaseName() }
func (t GenericType) GetPackage() string { return t.Base.GetPackage() }

// ArrayType represents T[].
type ArrayType struct {
	Elem Type
}

func (t ArrayType) String() string {
	if t.Elem == nil {
		return "[]"
	}
	return t.Elem.String() + "[]"
}
func (t ArrayType) IsUnknown() bool    { return false }
func (t ArrayType) IsPrimitive() bool  { return false }
func (t ArrayType) BaseName() string   { return t.Elem.BaseName() + "[]" }
func (t ArrayType) GetPackage() string { return "" }

// UnknownType is the static type of an expression the resolver could not type.
// It is compatible with every other type.
type UnknownType struct{}

func (t UnknownType) String() string     { return "?" }
func (t UnknownType) IsUnknown() bool    { return true }
func (t UnknownType) IsPrimitive() bool  { return false }
func (t UnknownType) BaseName() string   { return "" }
func (t UnknownType) GetPackage() string { return "" }

// NullType is the type of the null literal.
type NullType struct{}

func (t NullType) String() string     { return "null" }
func (t NullType) IsUnknown() bool    { return false }
func (t NullType) IsPrimitive() bool  { return false }
func (t NullType) BaseName() string   { return "null" }
func (t NullType) GetPackage() string { return "" }

// VoidType is the result type of methods returning nothing.
type VoidType struct{}

func (t VoidType) String() string     { return "void" }
func (t VoidType) IsUnknown() bool    { return false }
func (t VoidType) IsPrimitive() bool  { return false }
func (t VoidType) BaseName() string   { return "void" }
func (t VoidType) GetPackage() string { return "" }

// Frequently used types.
var (
	Int     Type = BasicType{Name: "int"}
	Long    Type = BasicType{Name: "long"}
	Double  Type = BasicType{Name: "double"}
	Float   Type = BasicType{Name: "float"}
	Boolean Type = BasicType{Name: "boolean"}
	Char    Type = BasicType{Name: "char"}
	Short   Type = BasicType{Name: "short"}
	Byte    Type = BasicType{Name: "byte"}
	String  Type = NamedType{Package: LangPackage, Name: "String"}
	Object  Type = NamedType{Package: LangPackage, Name: "Object"}
	Unknown Type = UnknownType{}
	Null    Type = NullType{}
	Void    Type = VoidType{}
)

// LangPackage is implicitly imported into every unit.
const LangPackage = "java.lang"

// IsPrimitiveType checks if a type name is a primitive type.
// Primitive types are never package-qualified.
func IsPrimitiveType(name string) bool {
	switch name {
	case "int", "long", "short", "byte", "char",
		"float", "double", "boolean":
		return true
	}
	return false
}

// IsIntegral reports whether t is an integral primitive.
func IsIntegral(t Type) bool {
	b, ok := t.(BasicType)
	if !ok {
		return false
	}
	switch b.Name {
	case "int", "long", "short", "byte", "char":
		return true
	}
	return false
}

// IsNumeric reports whether t is a numeric primitive.
func IsNumeric(t Type) bool {
	if IsIntegral(t) {
		return true
	}
	b, ok := t.(BasicType)
	return ok && (b.Name == "double" || b.Name == "float")
}

// Erasure strips type arguments.
func Erasure(t Type) Type {
	if g, ok := t.(GenericType); ok {
		return Erasure(g.Base)
	}
	return t
}

// QualifiedName returns the fully qualified name of a class-like type, or ""
// for primitives, arrays and special types.
func QualifiedName(t Type) string {
	if n, ok := Erasure(t).(NamedType); ok {
		return n.String()
	}
	return ""
}

// Named builds a NamedType from a fully qualified name.
func Named(qualified string) NamedType {
	if idx := strings.LastIndex(qualified, "."); idx != -1 {
		return NamedType{Package: qualified[:idx], Name: qualified[idx+1:]}
	}
	return NamedType{Name: qualified}
}

// SimpleName returns the last dotted segment of a qualified name.
func SimpleName(qualified string) string {
	if idx := strings.LastIndex(qualified, "."); idx != -1 {
		return qualified[idx+1:]
	}
	return qualified
}

// PackageOf returns everything before the last dot of a qualified name.
func PackageOf(qualified string) string {
	if idx := strings.LastIndex(qualified, "."); idx != -1 {
		return qualified[:idx]
	}
	return ""
}

// ParseType parses a fully qualified type as written in environment documents:
// "int", "java.lang.String", "java.util.List<java.lang.String>", "int[][]".
func ParseType(s string) Type {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return UnknownType{}
	case "void":
		return VoidType{}
	case "null":
		return NullType{}
	case "?":
		return UnknownType{}
	}
	if strings.HasSuffix(s, "[]") {
		return ArrayType{Elem: ParseType(s[:len(s)-2])}
	}
	if strings.HasSuffix(s, ">") {
		if idx := strings.Index(s, "<"); idx != -1 {
			base := ParseType(s[:idx])
			paramsStr := s[idx+1 : len(s)-1]

			// Split by comma, respecting nested brackets
			var params []Type
			depth := 0
			start := 0
			for i := 0; i < len(paramsStr); i++ {
				switch paramsStr[i] {
				case '<':
					depth++
				case '>':
					depth--
				case ',':
					if depth == 0 {
						params = append(params, ParseType(paramsStr[start:i]))
						start = i + 1
					}
				}
			}
			params = append(params, ParseType(paramsStr[start:]))
			return GenericType{Base: base, Params: params}
		}
	}
	if IsPrimitiveType(s) {
		return BasicType{Name: s}
	}
	return Named(s)
}

// Equal compares two types structurally.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}
