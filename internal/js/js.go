// Package js is the small JavaScript syntax tree the code generator builds
// and the printer writes out. Nodes keep the source position they were
// generated from so the printer can record source-map mappings.
package js

import (
	"strings"

	"martianoff/stjs/internal/source"
)

// Node is any JavaScript node.
type Node interface {
	Origin() source.Position
}

// Expr is a JavaScript expression.
type Expr interface {
	Node
	expr()
}

// Stmt is a JavaScript statement.
type Stmt interface {
	Node
	stmt()
}

// At is embedded by every node.
type At struct {
	Pos source.Position
}

func (a At) Origin() source.Position { return a.Pos }

// ---- expressions ----

type Ident struct {
	At
	Name string
}

// Member is x.name.
type Member struct {
	At
	X    Expr
	Name string
}

// Index is x[index].
type Index struct {
	At
	X     Expr
	Index Expr
}

type Call struct {
	At
	Fn   Expr
	Args []Expr
}

type New struct {
	At
	Ctor Expr
	Args []Expr
}

// Lit is a literal already in JavaScript spelling.
type Lit struct {
	At
	Raw string
}

type Unary struct {
	At
	Op      string
	X       Expr
	Postfix bool
}

type Binary struct {
	At
	Op    string
	Left  Expr
	Right Expr
}

type Assign struct {
	At
	Op    string
	Left  Expr
	Right Expr
}

type Cond struct {
	At
	Test Expr
	Then Expr
	Else Expr
}

type Paren struct {
	At
	X Expr
}

// Function is a function expression.
type Function struct {
	At
	Params []string
	Body   *Block
}

// Arrow body is an Expr or a *Block.
type Arrow struct {
	At
	Params []string
	Body   Node
}

type Array struct {
	At
	Elems []Expr
}

type Prop struct {
	Key   string
	Value Expr
}

type Object struct {
	At
	Props []Prop
}

type This struct {
	At
}

func (*Ident) expr()    {}
func (*Member) expr()   {}
func (*Index) expr()    {}
func (*Call) expr()     {}
func (*New) expr()      {}
func (*Lit) expr()      {}
func (*Unary) expr()    {}
func (*Binary) expr()   {}
func (*Assign) expr()   {}
func (*Cond) expr()     {}
func (*Paren) expr()    {}
func (*Function) expr() {}
func (*Arrow) expr()    {}
func (*Array) expr()    {}
func (*Object) expr()   {}
func (*This) expr()     {}

// ---- statements ----

type VarDecl struct {
	At
	Name string
	Init Expr
}

type ExprStmt struct {
	At
	X Expr
}

type Block struct {
	At
	Stmts []Stmt
}

type If struct {
	At
	Cond Expr
	Then Stmt
	Else Stmt
}

type While struct {
	At
	Cond Expr
	Body Stmt
}

type DoWhile struct {
	At
	Body Stmt
	Cond Expr
}

// For init is a *VarDecl list, an expression list, or empty.
type For struct {
	At
	Init   []Stmt
	Cond   Expr
	Update []Expr
	Body   Stmt
}

// ForIn is `for (var name in x) body`.
type ForIn struct {
	At
	Var  string
	X    Expr
	Body Stmt
}

type Switch struct {
	At
	X     Expr
	Cases []*Case
}

// Case without tests is the default case.
type Case struct {
	At
	Tests []Expr
	Body  []Stmt
}

type Return struct {
	At
	X Expr
}

type Break struct {
	At
	Label string
}

type Continue struct {
	At
	Label string
}

type Throw struct {
	At
	X Expr
}

type Try struct {
	At
	Body    *Block
	Param   string
	Catch   *Block
	Finally *Block
}

type Empty struct {
	At
}

func (*VarDecl) stmt()  {}
func (*ExprStmt) stmt() {}
func (*Block) stmt()    {}
func (*If) stmt()       {}
func (*While) stmt()    {}
func (*DoWhile) stmt()  {}
func (*For) stmt()      {}
func (*ForIn) stmt()    {}
func (*Switch) stmt()   {}
func (*Return) stmt()   {}
func (*Break) stmt()    {}
func (*Continue) stmt() {}
func (*Throw) stmt()    {}
func (*Try) stmt()      {}
func (*Empty) stmt()    {}

// ---- constructors ----

func Id(pos source.Position, name string) *Ident {
	return &Ident{At: At{pos}, Name: name}
}

// Path builds a dotted reference such as a.b.C from a qualified name.
func Path(pos source.Position, dotted string) Expr {
	parts := strings.Split(dotted, ".")
	var x Expr = Id(pos, parts[0])
	for _, p := range parts[1:] {
		x = &Member{At: At{pos}, X: x, Name: p}
	}
	return x
}

func Dot(pos source.Position, x Expr, name string) *Member {
	return &Member{At: At{pos}, X: x, Name: name}
}

func CallOf(pos source.Position, fn Expr, args ...Expr) *Call {
	return &Call{At: At{pos}, Fn: fn, Args: args}
}

func Raw(pos source.Position, raw string) *Lit {
	return &Lit{At: At{pos}, Raw: raw}
}

// Str builds a double-quoted string literal.
func Str(pos source.Position, s string) *Lit {
	return &Lit{At: At{pos}, Raw: Quote(s)}
}

func Stmt1(x Expr) *ExprStmt {
	return &ExprStmt{At: At{x.Origin()}, X: x}
}

// Quote renders s as a double-quoted JavaScript string literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte("0123456789abcdef"[r>>4])
				sb.WriteByte("0123456789abcdef"[r&0xf])
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// IsIdentifier reports whether s can be used as a bare property name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
