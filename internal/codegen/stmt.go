package codegen

import (
	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/js"
)

func at(n ast.Node) js.At {
	return js.At{Pos: n.Pos()}
}

func stmts(s ...js.Stmt) Result {
	return Result{Stmts: s}
}

// statementRule renders every statement kind except for-each.
func statementRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	switch s := n.(type) {
	case *ast.Block:
		return stmts(t.Block(s)), Commit
	case *ast.LocalVar:
		return stmts(&js.VarDecl{At: at(s), Name: s.Name, Init: t.OptExpr(s.Init)}), Commit
	case *ast.ExprStmt:
		if call, ok := constructorCall(s); ok {
			ctx.Unsupported(call.Pos(), "%s(...) must be the first statement of a constructor", call.Name)
			return Result{}, Commit
		}
		return stmts(&js.ExprStmt{At: at(s), X: t.Expr(s.X)}), Commit
	case *ast.If:
		return stmts(&js.If{At: at(s), Cond: t.Expr(s.Cond), Then: t.Stmt(s.Then), Else: t.OptStmt(s.Else)}), Commit
	case *ast.While:
		return stmts(&js.While{At: at(s), Cond: t.Expr(s.Cond), Body: t.Stmt(s.Body)}), Commit
	case *ast.DoWhile:
		return stmts(&js.DoWhile{At: at(s), Body: t.Stmt(s.Body), Cond: t.Expr(s.Cond)}), Commit
	case *ast.For:
		loop := &js.For{At: at(s), Cond: t.OptExpr(s.Cond)}
		for _, init := range s.Init {
			loop.Init = append(loop.Init, t.Stmts(init)...)
		}
		loop.Update = t.Exprs(s.Update)
		loop.Body = t.Stmt(s.Body)
		return stmts(loop), Commit
	case *ast.Switch:
		return stmts(switchStmt(t, s)), Commit
	case *ast.Return:
		return stmts(&js.Return{At: at(s), X: t.OptExpr(s.X)}), Commit
	case *ast.Break:
		return stmts(&js.Break{At: at(s), Label: s.Label}), Commit
	case *ast.Continue:
		return stmts(&js.Continue{At: at(s), Label: s.Label}), Commit
	case *ast.Throw:
		return stmts(&js.Throw{At: at(s), X: t.Expr(s.X)}), Commit
	case *ast.Try:
		return tryStmt(t, ctx, s), Commit
	case *ast.Empty:
		return stmts(&js.Empty{At: at(s)}), Commit
	}
	return prev, Decline
}

func switchStmt(t *Translator, s *ast.Switch) *js.Switch {
	out := &js.Switch{At: at(s), X: t.Expr(s.Selector)}
	for _, c := range s.Cases {
		jc := &js.Case{At: at(c), Tests: t.Exprs(c.Labels)}
		for _, st := range c.Body {
			jc.Body = append(jc.Body, t.Stmts(st)...)
		}
		out.Cases = append(out.Cases, jc)
	}
	return out
}

func tryStmt(t *Translator, ctx *Context, s *ast.Try) Result {
	out := &js.Try{At: at(s), Body: t.Block(s.Body), Finally: t.Block(s.Finally)}
	if out.Body == nil {
		out.Body = &js.Block{}
	}
	if len(s.Catches) > 1 {
		ctx.Unsupported(s.Catches[1].Pos(), "try with more than one catch clause is not supported")
		return Result{}
	}
	if len(s.Catches) == 1 {
		c := s.Catches[0]
		out.Param = "e"
		if c.Param != nil {
			out.Param = c.Param.Name
		}
		out.Catch = t.Block(c.Body)
		if out.Catch == nil {
			out.Catch = &js.Block{}
		}
	}
	return stmts(out)
}

// forEachRule renders `for (T x : xs)` as `for (var x in xs)`. It leaves the
// chain open so the iteration guard can follow.
func forEachRule(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	s := n.(*ast.ForEach)
	return stmts(&js.ForIn{At: at(s), Var: s.VarName, X: t.Expr(s.Iterable), Body: t.Stmt(s.Body)}), Partial
}
