package codegen

import (
	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/js"
)

// accessorArity lists the map accessors rewritten to bracket syntax.
var accessorArity = map[string]int{
	"$get":    1,
	"$put":    2,
	"$set":    2,
	"$delete": 1,
}

// mapAccessHook rewrites m.$get(k), m.$put(k, v) and m.$delete(k) into
// m[k], m[k] = v and delete m[k]. Calls without a resolved symbol are left
// to the method call rule, which refuses them.
func mapAccessHook(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	e := n.(*ast.MethodCall)
	want, ok := accessorArity[e.Name]
	if !ok || len(e.Args) != want || e.Recv == nil {
		return prev, Decline
	}
	if _, isSuper := e.Recv.(*ast.Super); isSuper {
		return prev, Decline
	}
	if _, resolved := ctx.Table.Method(e.Pos()); !resolved {
		return prev, Decline
	}
	idx := &js.Index{At: at(e), X: t.Expr(e.Recv), Index: t.Expr(e.Args[0])}
	switch e.Name {
	case "$get":
		return value(idx), Commit
	case "$delete":
		return value(&js.Unary{At: at(e), Op: "delete", X: idx}), Commit
	}
	return value(&js.Assign{At: at(e), Op: "=", Left: idx, Right: t.Expr(e.Args[1])}), Commit
}

// iterationGuard skips inherited properties in for-each loops:
//
//	for (var x in xs) {
//	    if (!(xs).hasOwnProperty(x)) continue;
//	    ...
//	}
func iterationGuard(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	if !ctx.Options.IterationGuard || len(prev.Stmts) != 1 {
		return prev, Decline
	}
	loop, ok := prev.Stmts[0].(*js.ForIn)
	if !ok {
		return prev, Decline
	}
	s := n.(*ast.ForEach)
	pos := s.Pos()
	iterable := t.Nested(s.Iterable)
	owns := js.CallOf(pos, js.Dot(pos, &js.Paren{X: iterable}, "hasOwnProperty"), js.Id(pos, s.VarName))
	guard := &js.If{
		At:   js.At{Pos: pos},
		Cond: &js.Unary{Op: "!", X: owns},
		Then: &js.Continue{},
	}

	body := &js.Block{At: js.At{Pos: loop.Body.Origin()}, Stmts: []js.Stmt{guard}}
	switch b := loop.Body.(type) {
	case *js.Block:
		body.Stmts = append(body.Stmts, b.Stmts...)
	case *js.Empty:
	default:
		body.Stmts = append(body.Stmts, b)
	}
	guarded := *loop
	guarded.Body = body
	return stmts(&guarded), Commit
}
