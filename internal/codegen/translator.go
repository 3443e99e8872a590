package codegen

import (
	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/js"
	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/types"
)

// Translator runs contributor chains over the nodes of one unit.
type Translator struct {
	reg *Registry
	ctx *Context
}

func (t *Translator) Context() *Context {
	return t.ctx
}

// Translate runs the chain registered for the kind of n, passing the running
// result from one contributor to the next.
func (t *Translator) Translate(n ast.Node) Result {
	chain := t.reg.Chain(n.Kind())
	if len(chain) == 0 {
		t.ctx.Unsupported(n.Pos(), "%s is not supported", describe(n.Kind()))
		return Result{}
	}
	var res Result
	for _, c := range chain {
		if h, ok := c.(Hook); ok && h.Optional() && !t.ctx.HooksEnabled() {
			continue
		}
		out, verdict := c.Contribute(t, n, t.ctx, res)
		switch verdict {
		case Partial:
			res = out
		case Commit:
			return out
		}
	}
	return res
}

// Expr translates a node that must produce exactly one expression. When the
// chain yields none and nothing was reported yet, a no-value diagnostic is
// reported at the node.
func (t *Translator) Expr(e ast.Expr) js.Expr {
	before := t.ctx.Diagnostics()
	res := t.Translate(e)
	if res.Expr != nil {
		return res.Expr
	}
	if t.ctx.Diagnostics() == before {
		t.ctx.Unsupported(e.Pos(), "%s has no JavaScript equivalent", describe(e.Kind()))
	}
	return js.Raw(e.Pos(), "undefined")
}

// OptExpr is Expr for optional children.
func (t *Translator) OptExpr(e ast.Expr) js.Expr {
	if e == nil {
		return nil
	}
	return t.Expr(e)
}

func (t *Translator) Exprs(list []ast.Expr) []js.Expr {
	out := make([]js.Expr, 0, len(list))
	for _, e := range list {
		out = append(out, t.Expr(e))
	}
	return out
}

// Nested translates e with every optional contributor switched off.
func (t *Translator) Nested(e ast.Expr) js.Expr {
	restore := t.ctx.DisableHooks()
	defer restore()
	return t.Expr(e)
}

// Stmts translates a statement. An expression result becomes an expression
// statement.
func (t *Translator) Stmts(s ast.Stmt) []js.Stmt {
	if s == nil {
		return nil
	}
	res := t.Translate(s)
	if len(res.Stmts) > 0 {
		return res.Stmts
	}
	if res.Expr != nil {
		return []js.Stmt{js.Stmt1(res.Expr)}
	}
	return nil
}

// Stmt translates a statement used as a loop or branch body.
func (t *Translator) Stmt(s ast.Stmt) js.Stmt {
	out := t.Stmts(s)
	switch len(out) {
	case 0:
		return &js.Empty{At: js.At{Pos: s.Pos()}}
	case 1:
		return out[0]
	}
	return &js.Block{At: js.At{Pos: s.Pos()}, Stmts: out}
}

// OptStmt is Stmt for optional children.
func (t *Translator) OptStmt(s ast.Stmt) js.Stmt {
	if s == nil {
		return nil
	}
	return t.Stmt(s)
}

func (t *Translator) Block(b *ast.Block) *js.Block {
	if b == nil {
		return nil
	}
	out := &js.Block{At: js.At{Pos: b.Pos()}}
	for _, s := range b.Stmts {
		out.Stmts = append(out.Stmts, t.Stmts(s)...)
	}
	return out
}

// TypeAt renders the type recorded at pos. A site without a type symbol is
// refused.
func (t *Translator) TypeAt(pos source.Position, written string) js.Expr {
	sym, ok := t.ctx.Table.Identifier(pos)
	if !ok || sym.Owner == "" {
		t.ctx.Errorf(pos, "unresolved type '%s'", written)
		return nil
	}
	return t.TypeExpr(pos, sym.Owner)
}

// TypeExpr renders a reference to the type qualified and records it as a
// dependency.
func (t *Translator) TypeExpr(pos source.Position, qualified string) js.Expr {
	t.ctx.Depend(qualified)
	name := types.SimpleName(qualified)
	if info, ok := t.ctx.Env.Lookup(qualified); ok {
		name = info.TargetName()
	}
	return js.Path(pos, name)
}

// SelfRef renders a reference to the unit's own type.
func (t *Translator) SelfRef(pos source.Position) js.Expr {
	return js.Path(pos, t.ctx.Self.TargetName())
}

var kindPhrases = map[ast.Kind]string{
	ast.KindNewArray:  "dimensioned array creation",
	ast.KindClass:     "nested class",
	ast.KindInterface: "nested interface",
	ast.KindEnum:      "nested enum",
	ast.KindCatch:     "catch clause",
	ast.KindCase:      "switch case",
	ast.KindImport:    "import",
}

func describe(k ast.Kind) string {
	if s, ok := kindPhrases[k]; ok {
		return s
	}
	return "'" + k.String() + "'"
}
