package codegen

import (
	"strings"

	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/js"
	"martianoff/stjs/internal/resolve"
	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/types"
)

func value(e js.Expr) Result {
	return Result{Expr: e}
}

// expressionRule renders every expression kind. Name, field and method
// references are rendered from their resolved symbols only.
func expressionRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	switch e := n.(type) {
	case *ast.Literal:
		return value(literal(e)), Commit
	case *ast.Name:
		sym, ok := ctx.Table.Identifier(e.Pos())
		if !ok {
			ctx.Errorf(e.Pos(), "unresolved reference '%s'", e.Ident)
			return Result{}, Commit
		}
		return value(t.symbolExpr(e.Pos(), sym, nil)), Commit
	case *ast.FieldAccess:
		return fieldAccess(t, ctx, e), Commit
	case *ast.MethodCall:
		return methodCall(t, ctx, e), Commit
	case *ast.Unary:
		return value(&js.Unary{At: at(e), Op: e.Op, X: t.Expr(e.X), Postfix: e.Postfix}), Commit
	case *ast.Binary:
		return value(&js.Binary{At: at(e), Op: e.Op, Left: t.Expr(e.Left), Right: t.Expr(e.Right)}), Commit
	case *ast.Assign:
		return value(&js.Assign{At: at(e), Op: e.Op, Left: t.Expr(e.Left), Right: t.Expr(e.Right)}), Commit
	case *ast.Conditional:
		return value(&js.Cond{At: at(e), Test: t.Expr(e.Cond), Then: t.Expr(e.Then), Else: t.Expr(e.Else)}), Commit
	case *ast.Cast:
		x := t.Expr(e.X)
		if integralCast(e.Type) {
			return value(&js.Paren{At: at(e), X: &js.Binary{At: at(e), Op: "|", Left: x, Right: js.Raw(source.Position{}, "0")}}), Commit
		}
		return value(x), Commit
	case *ast.InstanceOf:
		return instanceOf(t, ctx, e), Commit
	case *ast.New:
		ctor := t.TypeAt(e.Type.Pos(), e.Type.Name)
		if ctor == nil {
			return Result{}, Commit
		}
		return value(&js.New{At: at(e), Ctor: ctor, Args: t.Exprs(e.Args)}), Commit
	case *ast.NewArray:
		if len(e.Dims) > 0 || e.Init == nil {
			return Result{}, Decline
		}
		return value(&js.Array{At: at(e), Elems: t.Exprs(e.Init.Elems)}), Commit
	case *ast.ArrayInit:
		return value(&js.Array{At: at(e), Elems: t.Exprs(e.Elems)}), Commit
	case *ast.Index:
		return value(&js.Index{At: at(e), X: t.Expr(e.X), Index: t.Expr(e.Index)}), Commit
	case *ast.Lambda:
		return value(lambda(t, e)), Commit
	case *ast.This, *ast.Super:
		return value(&js.This{At: at(e)}), Commit
	case *ast.ClassLit:
		typ := t.TypeAt(e.Type.Pos(), e.Type.Name)
		if typ == nil {
			return Result{}, Commit
		}
		return value(typ), Commit
	case *ast.Paren:
		return value(&js.Paren{At: at(e), X: t.Expr(e.X)}), Commit
	}
	return prev, Decline
}

// literal renders a literal in JavaScript spelling: chars become strings,
// integer and floating suffixes and digit separators are dropped.
func literal(e *ast.Literal) js.Expr {
	pos := e.Pos()
	switch e.Lit {
	case ast.LitString, ast.LitChar:
		return js.Str(pos, e.Value)
	case ast.LitNull:
		return js.Raw(pos, "null")
	case ast.LitBool:
		return js.Raw(pos, e.Value)
	case ast.LitInt, ast.LitLong:
		v := strings.TrimRight(strings.ReplaceAll(e.Value, "_", ""), "lL")
		if isLegacyOctal(v) {
			v = "0o" + v[1:]
		}
		return js.Raw(pos, v)
	case ast.LitFloat, ast.LitDouble:
		v := strings.ReplaceAll(e.Value, "_", "")
		if !strings.HasPrefix(v, "0x") && !strings.HasPrefix(v, "0X") {
			v = strings.TrimRight(v, "fFdD")
		}
		return js.Raw(pos, v)
	}
	return js.Raw(pos, e.Value)
}

func isLegacyOctal(v string) bool {
	if len(v) < 2 || v[0] != '0' {
		return false
	}
	for _, r := range v[1:] {
		if r < '0' || r > '7' {
			return false
		}
	}
	return true
}

func integralCast(ref *ast.TypeRef) bool {
	if ref == nil || ref.Rank > 0 {
		return false
	}
	switch ref.Name {
	case "int", "long", "short", "byte":
		return true
	}
	return false
}

// symbolExpr renders an identifier symbol. recv is the rendered receiver of
// an instance member access; nil means the implicit this.
func (t *Translator) symbolExpr(pos source.Position, sym resolve.Symbol, recv js.Expr) js.Expr {
	switch sym.Origin {
	case resolve.OriginLocal:
		return js.Id(pos, sym.Target)
	case resolve.OriginType:
		return t.TypeExpr(pos, sym.Owner)
	case resolve.OriginEnumConstant:
		return js.Dot(pos, t.TypeExpr(pos, sym.Owner), sym.Target)
	}
	if sym.Static && sym.Owner != "" {
		return js.Dot(pos, t.TypeExpr(pos, sym.Owner), sym.Target)
	}
	if recv == nil {
		if sym.Owner == "" {
			return js.Id(pos, sym.Target)
		}
		recv = &js.This{At: js.At{Pos: pos}}
	}
	return js.Dot(pos, recv, sym.Target)
}

func fieldAccess(t *Translator, ctx *Context, e *ast.FieldAccess) Result {
	pos := e.Pos()
	sym, ok := ctx.Table.Identifier(pos)
	if !ok {
		ctx.Errorf(pos, "unresolved reference '%s'", e.Name)
		return Result{}
	}
	if sym.Origin == resolve.OriginType || sym.Origin == resolve.OriginEnumConstant || (sym.Static && sym.Owner != "") {
		return value(t.symbolExpr(pos, sym, nil))
	}
	var recv js.Expr
	if _, isSuper := e.X.(*ast.Super); isSuper {
		recv = &js.This{At: at(e.X)}
	} else {
		recv = t.Expr(e.X)
	}
	return value(js.Dot(pos, recv, sym.Target))
}

func methodCall(t *Translator, ctx *Context, e *ast.MethodCall) Result {
	pos := e.Pos()
	if e.Recv == nil && (e.Name == "super" || e.Name == "this") {
		ctx.Unsupported(pos, "%s(...) must be the first statement of a constructor", e.Name)
		return Result{}
	}
	sym, ok := ctx.Table.Method(pos)
	if !ok {
		ctx.Errorf(pos, "unresolved method '%s'", e.Name)
		return Result{}
	}

	var fn js.Expr
	var this []js.Expr
	_, superRecv := e.Recv.(*ast.Super)
	switch {
	case superRecv:
		owner := sym.Owner
		if owner == "" {
			owner = types.Object.String()
			if ctx.Self.Super != "" {
				owner = ctx.Self.Super
			}
		}
		proto := js.Dot(pos, t.TypeExpr(pos, owner), "prototype")
		fn = js.Dot(pos, js.Dot(pos, proto, sym.Target), "call")
		this = []js.Expr{&js.This{At: at(e.Recv)}}
	case sym.Static && sym.Owner != "":
		fn = js.Dot(pos, t.TypeExpr(pos, sym.Owner), sym.Target)
	case e.Recv == nil:
		if sym.Owner == "" {
			fn = js.Id(pos, sym.Target)
		} else {
			fn = js.Dot(pos, &js.This{At: js.At{Pos: pos}}, sym.Target)
		}
	default:
		fn = js.Dot(pos, t.Expr(e.Recv), sym.Target)
	}
	return value(js.CallOf(pos, fn, append(this, t.Exprs(e.Args)...)...))
}

func instanceOf(t *Translator, ctx *Context, e *ast.InstanceOf) Result {
	x := t.Expr(e.X)
	sym, ok := ctx.Table.Identifier(e.Type.Pos())
	if !ok || sym.Owner == "" {
		ctx.Errorf(e.Type.Pos(), "unresolved type '%s'", e.Type.Name)
		return Result{}
	}
	if info, found := ctx.Env.Lookup(sym.Owner); found && info.Kind == types.KindInterface {
		ctx.Unsupported(e.Pos(), "instanceof on interface '%s' is not supported", info.Name)
		return Result{}
	}
	return value(&js.Binary{At: at(e), Op: "instanceof", Left: x, Right: t.TypeExpr(e.Type.Pos(), sym.Owner)})
}

func lambda(t *Translator, e *ast.Lambda) js.Expr {
	fn := &js.Arrow{At: at(e), Params: paramNames(e.Params)}
	switch body := e.Body.(type) {
	case *ast.Block:
		fn.Body = t.Block(body)
	case ast.Expr:
		fn.Body = t.Expr(body)
	default:
		fn.Body = &js.Block{}
	}
	return fn
}
