package ast

// Inspect traverses the tree rooted at n in depth-first order. If f returns
// false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if isNil(n) || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if !isNil(c) {
			out = append(out, c)
		}
	}
	switch v := n.(type) {
	case *CompilationUnit:
		for _, i := range v.Imports {
			add(i)
		}
		add(v.Type)
	case *ClassDecl:
		add(v.Extends)
		for _, t := range v.Implements {
			add(t)
		}
		for _, m := range v.Members {
			add(m)
		}
	case *EnumDecl:
		for _, t := range v.Implements {
			add(t)
		}
		for _, c := range v.Constants {
			add(c)
		}
		for _, m := range v.Members {
			add(m)
		}
	case *EnumConstant:
		for _, a := range v.Args {
			add(a)
		}
	case *FieldDecl:
		add(v.Type)
		add(v.Init)
	case *MethodDecl:
		for _, p := range v.Params {
			add(p)
		}
		add(v.Result)
		add(v.Body)
	case *ConstructorDecl:
		for _, p := range v.Params {
			add(p)
		}
		add(v.Body)
	case *Initializer:
		add(v.Body)
	case *Param:
		add(v.Type)
	case *TypeRef:
		for _, a := range v.Args {
			add(a)
		}

	case *Block:
		for _, s := range v.Stmts {
			add(s)
		}
	case *LocalVar:
		add(v.Type)
		add(v.Init)
	case *ExprStmt:
		add(v.X)
	case *If:
		add(v.Cond)
		add(v.Then)
		add(v.Else)
	case *While:
		add(v.Cond)
		add(v.Body)
	case *DoWhile:
		add(v.Body)
		add(v.Cond)
	case *For:
		for _, s := range v.Init {
			add(s)
		}
		add(v.Cond)
		for _, u := range v.Update {
			add(u)
		}
		add(v.Body)
	case *ForEach:
		add(v.VarType)
		add(v.Iterable)
		add(v.Body)
	case *Switch:
		add(v.Selector)
		for _, c := range v.Cases {
			add(c)
		}
	case *Case:
		for _, l := range v.Labels {
			add(l)
		}
		for _, s := range v.Body {
			add(s)
		}
	case *Return:
		add(v.X)
	case *Throw:
		add(v.X)
	case *Try:
		add(v.Body)
		for _, c := range v.Catches {
			add(c)
		}
		add(v.Finally)
	case *Catch:
		add(v.Param)
		add(v.Body)

	case *FieldAccess:
		add(v.X)
	case *MethodCall:
		add(v.Recv)
		for _, a := range v.Args {
			add(a)
		}
	case *Unary:
		add(v.X)
	case *Binary:
		add(v.Left)
		add(v.Right)
	case *Assign:
		add(v.Left)
		add(v.Right)
	case *Conditional:
		add(v.Cond)
		add(v.Then)
		add(v.Else)
	case *Cast:
		add(v.Type)
		add(v.X)
	case *InstanceOf:
		add(v.X)
		add(v.Type)
	case *New:
		add(v.Type)
		for _, a := range v.Args {
			add(a)
		}
	case *NewArray:
		add(v.Elem)
		for _, d := range v.Dims {
			add(d)
		}
		add(v.Init)
	case *ArrayInit:
		for _, e := range v.Elems {
			add(e)
		}
	case *Index:
		add(v.X)
		add(v.Index)
	case *Lambda:
		for _, p := range v.Params {
			add(p)
		}
		add(v.Body)
	case *ClassLit:
		add(v.Type)
	case *Paren:
		add(v.X)
	}
	return out
}

// isNil catches both untyped nil and typed nil pointers stored in an interface.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *TypeRef:
		return v == nil
	case *Block:
		return v == nil
	case *ArrayInit:
		return v == nil
	case *Param:
		return v == nil
	case *Case:
		return v == nil
	case *Catch:
		return v == nil
	case *Import:
		return v == nil
	case *EnumConstant:
		return v == nil
	}
	return false
}
