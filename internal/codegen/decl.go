package codegen

import (
	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/js"
	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/types"
)

func unitRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	u := n.(*ast.CompilationUnit)
	if u.Type == nil {
		ctx.Errorf(u.Pos(), "unit declares no type")
		return Result{}, Commit
	}
	return t.Translate(u.Type), Commit
}

// declareSelf binds value to the unit's type name, inside its namespace when
// it has one.
func declareSelf(t *Translator, pos source.Position, value js.Expr) []js.Stmt {
	self := t.ctx.Self
	if self.Namespace == "" {
		return []js.Stmt{&js.VarDecl{At: js.At{Pos: pos}, Name: self.SimpleName(), Init: value}}
	}
	ns := js.CallOf(pos, js.Path(pos, "stjs.ns"), js.Str(pos, self.Namespace))
	assign := &js.Assign{At: js.At{Pos: pos}, Op: "=", Left: t.SelfRef(pos), Right: value}
	return []js.Stmt{js.Stmt1(ns), js.Stmt1(assign)}
}

func classRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	d := n.(*ast.ClassDecl)
	pos := d.Pos()
	self := ctx.Self

	var (
		ctor     *ast.ConstructorDecl
		instance []ast.Member // instance fields and initializers, in order
		methods  []ast.Member
		statics  []ast.Member // static fields and initializers, in order
	)
	for _, m := range d.Members {
		switch m := m.(type) {
		case *ast.ConstructorDecl:
			if ctor != nil {
				ctx.Unsupported(m.Pos(), "class '%s' declares more than one constructor", d.Name)
				continue
			}
			ctor = m
		case *ast.FieldDecl:
			if m.Modifiers.Static() {
				statics = append(statics, m)
			} else {
				instance = append(instance, m)
			}
		case *ast.Initializer:
			if m.Static {
				statics = append(statics, m)
			} else {
				instance = append(instance, m)
			}
		case *ast.MethodDecl:
			methods = append(methods, m)
		case ast.TypeDecl:
			ctx.Unsupported(m.Pos(), "nested type '%s' is not supported", m.DeclName())
		}
	}

	// Translation follows output order so dependencies are first seen where
	// they are rendered.
	var parent js.Expr
	if self.Super != "" {
		parent = t.TypeExpr(pos, self.Super)
	}
	var (
		params    []string
		superArgs []js.Expr
		ctorStmts []ast.Stmt
	)
	if ctor != nil {
		params = paramNames(ctor.Params)
		if ctor.Body != nil {
			ctorStmts = ctor.Body.Stmts
		}
		if len(ctorStmts) > 0 {
			if call, ok := constructorCall(ctorStmts[0]); ok {
				if call.Name == "this" {
					ctx.Unsupported(call.Pos(), "constructor chaining through this(...) is not supported")
				} else {
					superArgs = t.Exprs(call.Args)
				}
				ctorStmts = ctorStmts[1:]
			}
		}
	}

	var fnBody []js.Stmt
	if parent != nil {
		args := append([]js.Expr{&js.This{At: js.At{Pos: pos}}}, superArgs...)
		fnBody = append(fnBody, js.Stmt1(js.CallOf(pos, js.Dot(pos, parent, "call"), args...)))
	}
	fnBody = append(fnBody, t.members(instance)...)
	for _, s := range ctorStmts {
		fnBody = append(fnBody, t.Stmts(s)...)
	}

	fn := &js.Function{At: js.At{Pos: pos}, Params: params, Body: &js.Block{Stmts: fnBody}}
	out := declareSelf(t, pos, fn)
	if parent != nil {
		proto := js.Dot(pos, t.SelfRef(pos), "prototype")
		create := js.CallOf(pos, js.Path(pos, "Object.create"), js.Dot(pos, parent, "prototype"))
		out = append(out,
			js.Stmt1(&js.Assign{At: js.At{Pos: pos}, Op: "=", Left: proto, Right: create}),
			js.Stmt1(&js.Assign{At: js.At{Pos: pos}, Op: "=", Left: js.Dot(pos, proto, "constructor"), Right: t.SelfRef(pos)}),
		)
	}
	out = append(out, t.members(methods)...)
	out = append(out, t.members(statics)...)
	return Result{Stmts: out}, Commit
}

// constructorCall matches a leading super(...) or this(...) statement.
func constructorCall(s ast.Stmt) (*ast.MethodCall, bool) {
	es, ok := s.(*ast.ExprStmt)
	if !ok {
		return nil, false
	}
	call, ok := es.X.(*ast.MethodCall)
	if !ok || call.Recv != nil || (call.Name != "super" && call.Name != "this") {
		return nil, false
	}
	return call, true
}

func interfaceRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	d := n.(*ast.ClassDecl)
	pos := d.Pos()
	fn := &js.Function{At: js.At{Pos: pos}, Body: &js.Block{}}
	out := declareSelf(t, pos, fn)
	var statics []js.Stmt
	for _, m := range d.Members {
		switch m := m.(type) {
		case *ast.FieldDecl:
			statics = append(statics, t.Translate(m).Stmts...)
		case *ast.MethodDecl:
			out = append(out, t.Translate(m).Stmts...)
		case ast.TypeDecl:
			ctx.Unsupported(m.Pos(), "nested type '%s' is not supported", m.DeclName())
		}
	}
	return Result{Stmts: append(out, statics...)}, Commit
}

func enumRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	d := n.(*ast.EnumDecl)
	obj := &js.Object{At: js.At{Pos: d.Pos()}}
	for _, c := range d.Constants {
		obj.Props = append(obj.Props, js.Prop{Key: c.Name, Value: js.Str(c.Pos(), c.Name)})
	}
	return Result{Stmts: declareSelf(t, d.Pos(), obj)}, Commit
}

func fieldRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	d := n.(*ast.FieldDecl)
	pos := d.Pos()
	var owner js.Expr = &js.This{At: js.At{Pos: pos}}
	if d.Modifiers.Static() || ctx.Self.Kind == types.KindInterface {
		owner = t.SelfRef(pos)
	}
	init := t.OptExpr(d.Init)
	if init == nil {
		init = js.Raw(pos, zeroValue(d.Type))
	}
	assign := &js.Assign{At: js.At{Pos: pos}, Op: "=", Left: js.Dot(pos, owner, d.Name), Right: init}
	return Result{Stmts: []js.Stmt{js.Stmt1(assign)}}, Commit
}

func zeroValue(ref *ast.TypeRef) string {
	if ref == nil || ref.Rank > 0 {
		return "null"
	}
	switch ref.Name {
	case "int", "long", "short", "byte", "float", "double":
		return "0"
	case "boolean":
		return "false"
	case "char":
		return `"\u0000"`
	}
	return "null"
}

// methodRule puts static methods on the constructor and instance methods on
// its prototype. Methods without a body produce nothing.
func methodRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	d := n.(*ast.MethodDecl)
	if d.Body == nil {
		return Result{}, Commit
	}
	pos := d.Pos()
	target := d.Name
	if sym, ok := ctx.Table.Method(pos); ok {
		target = sym.Target
	} else {
		// keep going so the body reports its own failures
		ctx.Errorf(pos, "method '%s' has no resolved symbol", d.Name)
	}
	owner := t.SelfRef(pos)
	if !d.Modifiers.Static() {
		owner = js.Dot(pos, owner, "prototype")
	}
	fn := &js.Function{At: js.At{Pos: pos}, Params: paramNames(d.Params), Body: t.Block(d.Body)}
	assign := &js.Assign{At: js.At{Pos: pos}, Op: "=", Left: js.Dot(pos, owner, target), Right: fn}
	return Result{Stmts: []js.Stmt{js.Stmt1(assign)}}, Commit
}

// initializerRule returns instance initializer bodies as statements for the
// constructor; static ones run once as an immediately invoked function.
func initializerRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	d := n.(*ast.Initializer)
	body := t.Block(d.Body)
	if body == nil {
		return Result{}, Commit
	}
	if !d.Static {
		return Result{Stmts: body.Stmts}, Commit
	}
	pos := d.Pos()
	fn := &js.Function{At: js.At{Pos: pos}, Body: body}
	return Result{Stmts: []js.Stmt{js.Stmt1(js.CallOf(pos, &js.Paren{X: fn}))}}, Commit
}

func (t *Translator) members(members []ast.Member) []js.Stmt {
	var out []js.Stmt
	for _, m := range members {
		out = append(out, t.Translate(m).Stmts...)
	}
	return out
}

func paramNames(params []*ast.Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}
