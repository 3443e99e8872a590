// Package ast is the neutral syntax tree of one compilation unit as handed
// over by the parser front end.
package ast

import (
	"martianoff/stjs/internal/source"
)

// Kind identifies the syntactic category of a node. The code generator keys
// its rule registry on it.
type Kind uint8

const (
	KindInvalid Kind = iota

	KindUnit
	KindImport
	KindClass
	KindInterface
	KindEnum
	KindEnumConstant
	KindField
	KindMethod
	KindConstructor
	KindInitializer
	KindParam
	KindTypeRef

	KindBlock
	KindLocalVar
	KindExprStmt
	KindIf
	KindWhile
	KindDoWhile
	KindFor
	KindForEach
	KindSwitch
	KindCase
	KindReturn
	KindBreak
	KindContinue
	KindThrow
	KindTry
	KindCatch
	KindEmpty

	KindName
	KindFieldAccess
	KindMethodCall
	KindLiteral
	KindUnary
	KindBinary
	KindAssign
	KindConditional
	KindCast
	KindInstanceOf
	KindNew
	KindNewArray
	KindArrayInit
	KindIndex
	KindLambda
	KindThis
	KindSuper
	KindClassLit
	KindParen

	kindCount
)

// kindNames doubles as the node spelling of unit documents.
var kindNames = [kindCount]string{
	KindInvalid:      "invalid",
	KindUnit:         "unit",
	KindImport:       "import",
	KindClass:        "class",
	KindInterface:    "interface",
	KindEnum:         "enum",
	KindEnumConstant: "constant",
	KindField:        "field",
	KindMethod:       "method",
	KindConstructor:  "constructor",
	KindInitializer:  "initializer",
	KindParam:        "param",
	KindTypeRef:      "type",
	KindBlock:        "block",
	KindLocalVar:     "var",
	KindExprStmt:     "expr",
	KindIf:           "if",
	KindWhile:        "while",
	KindDoWhile:      "do",
	KindFor:          "for",
	KindForEach:      "foreach",
	KindSwitch:       "switch",
	KindCase:         "case",
	KindReturn:       "return",
	KindBreak:        "break",
	KindContinue:     "continue",
	KindThrow:        "throw",
	KindTry:          "try",
	KindCatch:        "catch",
	KindEmpty:        "empty",
	KindName:         "name",
	KindFieldAccess:  "select",
	KindMethodCall:   "call",
	KindLiteral:      "literal",
	KindUnary:        "unary",
	KindBinary:       "binary",
	KindAssign:       "assign",
	KindConditional:  "conditional",
	KindCast:         "cast",
	KindInstanceOf:   "instanceof",
	KindNew:          "new",
	KindNewArray:     "newarray",
	KindArrayInit:    "arrayinit",
	KindIndex:        "index",
	KindLambda:       "lambda",
	KindThis:         "this",
	KindSuper:        "super",
	KindClassLit:     "classlit",
	KindParen:        "paren",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "invalid"
}

// ParseKind maps a document spelling back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s && Kind(i) != KindInvalid {
			return Kind(i), true
		}
	}
	return KindInvalid, false
}

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() source.Position
	Kind() Kind
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Member is a type member: field, method, constructor, initializer or a
// nested type declaration.
type Member interface {
	Node
	memberNode()
}

// TypeDecl is a class, interface or enum declaration.
type TypeDecl interface {
	Member
	DeclName() string
	DeclModifiers() Modifiers
}

// Base carries the source position of a node.
type Base struct {
	At source.Position
}

func (b Base) Pos() source.Position { return b.At }

// Modifiers are the declaration modifiers as written.
type Modifiers []string

// Has reports whether m contains mod.
func (m Modifiers) Has(mod string) bool {
	for _, s := range m {
		if s == mod {
			return true
		}
	}
	return false
}

func (m Modifiers) Static() bool { return m.Has("static") }
