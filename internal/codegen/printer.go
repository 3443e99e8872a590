package codegen

import (
	"strings"
	"unicode/utf16"

	"martianoff/stjs/internal/js"
	"martianoff/stjs/internal/sourcemap"
)

const indentUnit = "    "

// Printer writes js nodes to an append-only buffer. It tracks the generated
// line and column itself and, when given a source map generator, records a
// mapping for every node that carries a source position.
type Printer struct {
	buf    []byte
	indent int
	line   int
	col    int
	gen    *sourcemap.Generator

	lastLine int
	lastCol  int
}

// NewPrinter creates a printer. gen may be nil.
func NewPrinter(gen *sourcemap.Generator) *Printer {
	return &Printer{gen: gen, lastLine: -1, lastCol: -1}
}

func (p *Printer) String() string {
	return string(p.buf)
}

// Lines returns the number of lines written so far, counting an unfinished
// last line.
func (p *Printer) Lines() int {
	if p.col > 0 {
		return p.line + 1
	}
	return p.line
}

// Line writes s followed by a newline at the current indentation.
func (p *Printer) Line(s string) {
	p.startLine()
	p.write(s)
	p.newline()
}

// Stmt writes one statement on its own line.
func (p *Printer) Stmt(s js.Stmt) {
	p.startLine()
	p.stmt(s)
	p.newline()
}

// Expr writes a single expression at the cursor.
func (p *Printer) Expr(e js.Expr) {
	p.expr(e)
}

func (p *Printer) write(s string) {
	for _, r := range s {
		if r == '\n' {
			p.line++
			p.col = 0
			continue
		}
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		p.col += n
	}
	p.buf = append(p.buf, s...)
}

func (p *Printer) newline() {
	p.write("\n")
}

func (p *Printer) startLine() {
	for i := 0; i < p.indent; i++ {
		p.write(indentUnit)
	}
}

func (p *Printer) mark(n js.Node) {
	if p.gen == nil {
		return
	}
	pos := n.Origin()
	if !pos.IsValid() || (p.line == p.lastLine && p.col == p.lastCol) {
		return
	}
	p.gen.AddPosition(p.line, p.col, pos)
	p.lastLine, p.lastCol = p.line, p.col
}

// ---- statements ----

func (p *Printer) stmt(s js.Stmt) {
	p.mark(s)
	switch s := s.(type) {
	case *js.VarDecl:
		p.write("var " + s.Name)
		if s.Init != nil {
			p.write(" = ")
			p.expr(s.Init)
		}
		p.write(";")
	case *js.ExprStmt:
		p.expr(s.X)
		p.write(";")
	case *js.Block:
		p.block(s)
	case *js.If:
		p.write("if (")
		p.expr(s.Cond)
		p.write(")")
		p.body(s.Then)
		if s.Else != nil {
			if _, isBlock := s.Then.(*js.Block); !isBlock {
				p.newline()
				p.startLine()
			} else {
				p.write(" ")
			}
			p.write("else")
			if elif, ok := s.Else.(*js.If); ok {
				p.write(" ")
				p.stmt(elif)
			} else {
				p.body(s.Else)
			}
		}
	case *js.While:
		p.write("while (")
		p.expr(s.Cond)
		p.write(")")
		p.body(s.Body)
	case *js.DoWhile:
		p.write("do")
		p.body(s.Body)
		if _, isBlock := s.Body.(*js.Block); isBlock {
			p.write(" ")
		} else {
			p.newline()
			p.startLine()
		}
		p.write("while (")
		p.expr(s.Cond)
		p.write(");")
	case *js.For:
		p.write("for (")
		p.forInit(s.Init)
		p.write(";")
		if s.Cond != nil {
			p.write(" ")
			p.expr(s.Cond)
		}
		p.write(";")
		if len(s.Update) > 0 {
			p.write(" ")
			p.exprList(s.Update)
		}
		p.write(")")
		p.body(s.Body)
	case *js.ForIn:
		p.write("for (var " + s.Var + " in ")
		p.expr(s.X)
		p.write(")")
		p.body(s.Body)
	case *js.Switch:
		p.switchStmt(s)
	case *js.Return:
		p.write("return")
		if s.X != nil {
			p.write(" ")
			p.expr(s.X)
		}
		p.write(";")
	case *js.Break:
		p.write(jump("break", s.Label))
	case *js.Continue:
		p.write(jump("continue", s.Label))
	case *js.Throw:
		p.write("throw ")
		p.expr(s.X)
		p.write(";")
	case *js.Try:
		p.write("try ")
		p.block(s.Body)
		if s.Catch != nil {
			p.write(" catch (" + s.Param + ") ")
			p.block(s.Catch)
		}
		if s.Finally != nil {
			p.write(" finally ")
			p.block(s.Finally)
		}
	case *js.Empty:
		p.write(";")
	}
}

func jump(keyword, label string) string {
	if label == "" {
		return keyword + ";"
	}
	return keyword + " " + label + ";"
}

// body writes a loop or branch body: blocks and bare jumps after a space,
// other single statements indented on the next line.
func (p *Printer) body(s js.Stmt) {
	switch b := s.(type) {
	case *js.Block:
		p.write(" ")
		p.block(b)
		return
	case *js.Empty:
		p.write(";")
		return
	case *js.Continue, *js.Break:
		p.write(" ")
		p.stmt(b)
		return
	}
	p.newline()
	p.indent++
	p.startLine()
	p.stmt(s)
	p.indent--
}

func (p *Printer) block(b *js.Block) {
	if b == nil || len(b.Stmts) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.newline()
	p.indent++
	for _, s := range b.Stmts {
		p.Stmt(s)
	}
	p.indent--
	p.startLine()
	p.write("}")
}

func (p *Printer) forInit(init []js.Stmt) {
	if len(init) == 0 {
		return
	}
	if _, isVar := init[0].(*js.VarDecl); isVar {
		p.write("var ")
		for i, s := range init {
			v, ok := s.(*js.VarDecl)
			if !ok {
				continue
			}
			if i > 0 {
				p.write(", ")
			}
			p.write(v.Name)
			if v.Init != nil {
				p.write(" = ")
				p.expr(v.Init)
			}
		}
		return
	}
	for i, s := range init {
		if i > 0 {
			p.write(", ")
		}
		if es, ok := s.(*js.ExprStmt); ok {
			p.expr(es.X)
		}
	}
}

func (p *Printer) switchStmt(s *js.Switch) {
	p.write("switch (")
	p.expr(s.X)
	p.write(") {")
	p.newline()
	for _, c := range s.Cases {
		if len(c.Tests) == 0 {
			p.Line("default:")
		}
		for _, test := range c.Tests {
			p.startLine()
			p.write("case ")
			p.expr(test)
			p.write(":")
			p.newline()
		}
		p.indent++
		for _, st := range c.Body {
			p.Stmt(st)
		}
		p.indent--
	}
	p.startLine()
	p.write("}")
}

// ---- expressions ----

func (p *Printer) expr(e js.Expr) {
	switch e := e.(type) {
	case nil:
		p.write("undefined")
	case *js.Ident:
		p.mark(e)
		p.write(e.Name)
	case *js.Member:
		p.expr(e.X)
		p.write(".")
		p.mark(e)
		p.write(e.Name)
	case *js.Index:
		p.expr(e.X)
		p.write("[")
		p.expr(e.Index)
		p.write("]")
	case *js.Call:
		p.expr(e.Fn)
		p.args(e.Args)
	case *js.New:
		p.mark(e)
		p.write("new ")
		p.expr(e.Ctor)
		p.args(e.Args)
	case *js.Lit:
		p.mark(e)
		p.write(e.Raw)
	case *js.Unary:
		p.mark(e)
		if e.Postfix {
			p.expr(e.X)
			p.write(e.Op)
			return
		}
		p.write(e.Op)
		if needsSpace(e) {
			p.write(" ")
		}
		p.expr(e.X)
	case *js.Binary:
		p.expr(e.Left)
		p.write(" " + e.Op + " ")
		p.expr(e.Right)
	case *js.Assign:
		p.expr(e.Left)
		p.write(" " + e.Op + " ")
		p.expr(e.Right)
	case *js.Cond:
		p.expr(e.Test)
		p.write(" ? ")
		p.expr(e.Then)
		p.write(" : ")
		p.expr(e.Else)
	case *js.Paren:
		p.write("(")
		p.expr(e.X)
		p.write(")")
	case *js.Function:
		p.mark(e)
		p.write("function(" + strings.Join(e.Params, ", ") + ") ")
		p.block(e.Body)
	case *js.Arrow:
		p.mark(e)
		p.write("(" + strings.Join(e.Params, ", ") + ") => ")
		switch body := e.Body.(type) {
		case *js.Block:
			p.block(body)
		case *js.Object:
			p.write("(")
			p.expr(body)
			p.write(")")
		case js.Expr:
			p.expr(body)
		}
	case *js.Array:
		p.mark(e)
		p.write("[")
		p.exprList(e.Elems)
		p.write("]")
	case *js.Object:
		p.object(e)
	case *js.This:
		p.mark(e)
		p.write("this")
	}
}

// needsSpace separates word operators from their operand and keeps
// `- -x` and `+ +x` from collapsing into a decrement or increment.
func needsSpace(u *js.Unary) bool {
	if u.Op == "delete" || u.Op == "typeof" || u.Op == "void" {
		return true
	}
	if u.Op != "-" && u.Op != "+" {
		return false
	}
	switch x := u.X.(type) {
	case *js.Unary:
		return !x.Postfix && strings.HasPrefix(x.Op, u.Op)
	case *js.Lit:
		return strings.HasPrefix(x.Raw, u.Op)
	}
	return false
}

func (p *Printer) args(args []js.Expr) {
	p.write("(")
	p.exprList(args)
	p.write(")")
}

func (p *Printer) exprList(list []js.Expr) {
	for i, e := range list {
		if i > 0 {
			p.write(", ")
		}
		p.expr(e)
	}
}

// object writes small literal-only objects on one line and everything else
// one property per line.
func (p *Printer) object(o *js.Object) {
	p.mark(o)
	if len(o.Props) == 0 {
		p.write("{}")
		return
	}
	inline := len(o.Props) <= 4
	for _, prop := range o.Props {
		if _, isLit := prop.Value.(*js.Lit); !isLit {
			inline = false
		}
	}
	if inline {
		p.write("{ ")
		for i, prop := range o.Props {
			if i > 0 {
				p.write(", ")
			}
			p.prop(prop)
		}
		p.write(" }")
		return
	}
	p.write("{")
	p.newline()
	p.indent++
	for i, prop := range o.Props {
		p.startLine()
		p.prop(prop)
		if i < len(o.Props)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.indent--
	p.startLine()
	p.write("}")
}

func (p *Printer) prop(prop js.Prop) {
	if js.IsIdentifier(prop.Key) {
		p.write(prop.Key)
	} else {
		p.write(js.Quote(prop.Key))
	}
	p.write(": ")
	p.expr(prop.Value)
}
