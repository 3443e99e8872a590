package resolve

import (
	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/types"
)

var classType types.Type = types.Named("java.lang.Class")

func (r *resolver) expr(e ast.Expr) value {
	switch e := e.(type) {
	case nil:
		return unknown
	case *ast.Literal:
		return value{typ: literalType(e.Lit)}
	case *ast.Name:
		return r.name(e)
	case *ast.FieldAccess:
		return r.fieldAccess(e)
	case *ast.MethodCall:
		return r.methodCall(e)
	case *ast.This:
		return value{typ: r.self.Type()}
	case *ast.Super:
		return value{typ: types.Named(r.superName())}
	case *ast.Paren:
		return value{typ: r.expr(e.X).typ}
	case *ast.Unary:
		x := r.expr(e.X)
		if e.Op == "!" {
			return value{typ: types.Boolean}
		}
		return value{typ: types.Unbox(x.typ)}
	case *ast.Binary:
		left := r.expr(e.Left)
		right := r.expr(e.Right)
		return value{typ: binaryType(e.Op, left.typ, right.typ)}
	case *ast.Assign:
		left := r.expr(e.Left)
		r.expr(e.Right)
		return value{typ: left.typ}
	case *ast.Conditional:
		r.expr(e.Cond)
		then := r.expr(e.Then)
		els := r.expr(e.Else)
		if _, isNull := then.typ.(types.NullType); isNull {
			return value{typ: els.typ}
		}
		return value{typ: then.typ}
	case *ast.Cast:
		t := r.typeRef(e.Type)
		r.expr(e.X)
		return value{typ: t}
	case *ast.InstanceOf:
		r.expr(e.X)
		r.typeRef(e.Type)
		return value{typ: types.Boolean}
	case *ast.New:
		return r.newExpr(e)
	case *ast.NewArray:
		t := r.typeRef(e.Elem)
		for _, d := range e.Dims {
			r.expr(d)
		}
		if e.Init != nil {
			r.expr(e.Init)
		}
		n := len(e.Dims)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			t = types.ArrayType{Elem: t}
		}
		return value{typ: t}
	case *ast.ArrayInit:
		for _, el := range e.Elems {
			r.expr(el)
		}
		return value{typ: types.ArrayType{Elem: types.Unknown}}
	case *ast.Index:
		x := r.expr(e.X)
		r.expr(e.Index)
		if arr, ok := x.typ.(types.ArrayType); ok {
			return value{typ: arr.Elem}
		}
		return unknown
	case *ast.Lambda:
		r.pushScope()
		for _, p := range e.Params {
			r.param(p)
		}
		switch body := e.Body.(type) {
		case *ast.Block:
			r.block(body)
		case ast.Expr:
			r.expr(body)
		}
		r.popScope()
		return unknown
	case *ast.ClassLit:
		r.typeRef(e.Type)
		return value{typ: classType}
	}
	return unknown
}

func literalType(k ast.LitKind) types.Type {
	switch k {
	case ast.LitInt:
		return types.Int
	case ast.LitLong:
		return types.Long
	case ast.LitFloat:
		return types.Float
	case ast.LitDouble:
		return types.Double
	case ast.LitChar:
		return types.Char
	case ast.LitString:
		return types.String
	case ast.LitBool:
		return types.Boolean
	case ast.LitNull:
		return types.Null
	}
	return types.Unknown
}

func binaryType(op string, left, right types.Type) types.Type {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
		return types.Boolean
	case "+":
		if types.Equal(left, types.String) || types.Equal(right, types.String) {
			return types.String
		}
	}
	l, r := types.Unbox(left), types.Unbox(right)
	if types.Equal(l, types.Boolean) && types.Equal(r, types.Boolean) {
		return types.Boolean
	}
	if !types.IsNumeric(l) || !types.IsNumeric(r) {
		return types.Unknown
	}
	switch op {
	case "<<", ">>", ">>>":
		return promote(l, types.Int)
	}
	return promote(l, r)
}

// promote applies binary numeric promotion.
func promote(a, b types.Type) types.Type {
	for _, t := range []types.Type{types.Double, types.Float, types.Long} {
		if types.Equal(a, t) || types.Equal(b, t) {
			return t
		}
	}
	return types.Int
}

func (r *resolver) superName() string {
	if r.self.Super != "" {
		return r.self.Super
	}
	return types.Object.String()
}

// name resolves a simple name: locals and parameters, fields of the class
// and its supertypes, statically imported fields, type names, then package
// prefixes of qualified names.
func (r *resolver) name(n *ast.Name) value {
	pos := n.Pos()
	if t, ok := r.lookupLocal(n.Ident); ok {
		r.record(pos, Symbol{Kind: IdentifierRef, Origin: OriginLocal, Name: n.Ident, Target: n.Ident})
		return value{typ: t}
	}
	f, selfComplete := r.env.FindField(r.self.Name, n.Ident)
	if f != nil {
		return r.fieldRef(pos, n.Ident, f)
	}
	if v, ok := r.staticImportField(pos, n.Ident); ok {
		return v
	}
	if info, ok := r.lookupType(n.Ident); ok {
		return r.recordType(pos, n.Ident, info)
	}
	if r.env.HasPackage(n.Ident) {
		return value{pkg: n.Ident, typ: types.Unknown}
	}
	if !selfComplete {
		return r.dynamic(pos, r.self.Name, n.Ident, false)
	}
	r.errorf(pos, "cannot resolve symbol '%s'", n.Ident)
	return unknown
}

func (r *resolver) staticImportField(pos source.Position, name string) (value, bool) {
	if owner, ok := r.imports.staticSingle[name]; ok {
		f, complete := r.env.FindField(owner, name)
		if f != nil && f.Static {
			return r.fieldRef(pos, name, f), true
		}
		if f == nil && !complete {
			return r.dynamic(pos, owner, name, true), true
		}
	}
	for _, owner := range r.imports.staticOnDemand {
		if f, _ := r.env.FindField(owner, name); f != nil && f.Static {
			return r.fieldRef(pos, name, f), true
		}
	}
	return value{}, false
}

func (r *resolver) fieldRef(pos source.Position, name string, f *types.FieldInfo) value {
	origin := OriginField
	if owner, ok := r.env.Lookup(f.Owner); ok && owner.HasConstant(name) {
		origin = OriginEnumConstant
	}
	r.record(pos, Symbol{
		Kind:   IdentifierRef,
		Origin: origin,
		Owner:  f.Owner,
		Name:   name,
		Target: name,
		Static: f.Static,
	})
	if f.Type == nil {
		return unknown
	}
	return value{typ: f.Type}
}

func (r *resolver) dynamic(pos source.Position, owner, name string, static bool) value {
	r.record(pos, Symbol{
		Kind:   IdentifierRef,
		Origin: OriginDynamic,
		Owner:  owner,
		Name:   name,
		Target: name,
		Static: static,
	})
	return unknown
}

func (r *resolver) fieldAccess(e *ast.FieldAccess) value {
	pos := e.Pos()
	x := r.expr(e.X)
	switch {
	case x.pkg != "":
		q := x.pkg + "." + e.Name
		if info, ok := r.env.Lookup(q); ok {
			return r.recordType(pos, q, info)
		}
		if r.env.HasPackage(q) {
			return value{pkg: q, typ: types.Unknown}
		}
		r.errorf(pos, "cannot resolve symbol '%s'", q)
		return unknown

	case x.isType():
		f, complete := r.env.FindField(x.typeName, e.Name)
		if f != nil {
			if !f.Static {
				r.errorf(pos, "non-static field '%s' cannot be referenced from a static context", e.Name)
				return unknown
			}
			return r.fieldRef(pos, e.Name, f)
		}
		if !complete {
			return r.dynamic(pos, x.typeName, e.Name, true)
		}
		r.errorf(pos, "cannot resolve symbol '%s' in type '%s'", e.Name, x.typeName)
		return unknown
	}

	if _, isArray := x.typ.(types.ArrayType); isArray && e.Name == "length" {
		r.dynamic(pos, "", e.Name, false)
		return value{typ: types.Int}
	}
	owner := types.QualifiedName(x.typ)
	if owner == "" {
		if x.typ.IsUnknown() {
			return r.dynamic(pos, "", e.Name, false)
		}
		r.errorf(pos, "cannot resolve symbol '%s' on type '%s'", e.Name, x.typ)
		return unknown
	}
	f, complete := r.env.FindField(owner, e.Name)
	if f != nil {
		return r.fieldRef(pos, e.Name, f)
	}
	if !complete {
		return r.dynamic(pos, owner, e.Name, false)
	}
	r.errorf(pos, "cannot resolve symbol '%s' in type '%s'", e.Name, owner)
	return unknown
}

func (r *resolver) newExpr(e *ast.New) value {
	t := r.typeRef(e.Type)
	args := r.args(e.Args)
	info, ok := r.env.Lookup(types.QualifiedName(t))
	if !ok || info.Open || len(info.Constructors) == 0 {
		return value{typ: t}
	}
	switch _, outcome := r.selectOverload(info.Constructors, args); outcome {
	case inapplicable:
		r.errorf(e.Pos(), "no applicable constructor for '%s(%s)'", info.SimpleName(), typeList(args))
	case ambiguous:
		r.errorf(e.Pos(), "ambiguous constructor call '%s(%s)'", info.SimpleName(), typeList(args))
	}
	return value{typ: t}
}

// constructorCall checks an explicit super(...) or this(...) invocation.
func (r *resolver) constructorCall(e *ast.MethodCall, args []types.Type) {
	owner := r.self.Name
	if e.Name == "super" {
		owner = r.superName()
	}
	info, ok := r.env.Lookup(owner)
	if !ok || info.Open || len(info.Constructors) == 0 {
		return
	}
	if _, outcome := r.selectOverload(info.Constructors, args); outcome != selected {
		r.errorf(e.Pos(), "no applicable constructor for '%s(%s)'", e.Name, typeList(args))
	}
}

func (r *resolver) args(exprs []ast.Expr) []types.Type {
	out := make([]types.Type, len(exprs))
	for i, a := range exprs {
		out[i] = r.expr(a).typ
	}
	return out
}

func (r *resolver) methodCall(e *ast.MethodCall) value {
	args := r.args(e.Args)
	switch e.Recv.(type) {
	case nil:
		if e.Name == "super" || e.Name == "this" {
			r.constructorCall(e, args)
			return value{typ: types.Void}
		}
		return r.unqualifiedCall(e, args)
	case *ast.Super:
		return r.memberCall(e, r.superName(), args, false)
	}

	x := r.expr(e.Recv)
	switch {
	case x.pkg != "":
		r.errorf(e.Pos(), "cannot resolve method '%s'", e.Name)
		return unknown
	case x.isType():
		return r.memberCall(e, x.typeName, args, true)
	}
	owner := types.QualifiedName(x.typ)
	if owner == "" {
		return r.dynamicCall(e, "", false)
	}
	return r.memberCall(e, owner, args, false)
}

// memberCall resolves a call on an explicit receiver. staticOnly is set when
// the receiver is a type name.
func (r *resolver) memberCall(e *ast.MethodCall, owner string, args []types.Type, staticOnly bool) value {
	cands, complete := r.env.Methods(owner, e.Name)
	if v, ok := r.callOn(e, owner, cands, args, staticOnly); ok {
		return v
	}
	if !complete {
		return r.dynamicCall(e, owner, staticOnly)
	}
	if len(cands) == 0 {
		r.errorf(e.Pos(), "cannot resolve method '%s' in type '%s'", e.Name, owner)
	} else {
		r.errorf(e.Pos(), "no applicable overload for '%s(%s)' in type '%s'", e.Name, typeList(args), owner)
	}
	return unknown
}

// unqualifiedCall looks in the class hierarchy first, then in static
// imports.
func (r *resolver) unqualifiedCall(e *ast.MethodCall, args []types.Type) value {
	cands, complete := r.env.Methods(r.self.Name, e.Name)
	if len(cands) > 0 {
		if v, ok := r.callOn(e, r.self.Name, cands, args, false); ok {
			return v
		}
		if !complete {
			return r.dynamicCall(e, r.self.Name, false)
		}
		r.errorf(e.Pos(), "no applicable overload for '%s(%s)'", e.Name, typeList(args))
		return unknown
	}

	var owners []string
	if owner, ok := r.imports.staticSingle[e.Name]; ok {
		owners = append(owners, owner)
	}
	owners = append(owners, r.imports.staticOnDemand...)
	for _, owner := range owners {
		ms, _ := r.env.Methods(owner, e.Name)
		var statics []*types.MethodInfo
		for _, m := range ms {
			if m.Static {
				statics = append(statics, m)
			}
		}
		if len(statics) == 0 {
			continue
		}
		if v, ok := r.callOn(e, owner, statics, args, true); ok {
			return v
		}
	}
	if owner, ok := r.imports.staticSingle[e.Name]; ok {
		if info, found := r.env.Lookup(owner); found && info.Open {
			return r.dynamicCall(e, owner, true)
		}
	}

	if !complete {
		return r.dynamicCall(e, r.self.Name, false)
	}
	r.errorf(e.Pos(), "cannot resolve method '%s'", e.Name)
	return unknown
}

// callOn selects among cands and records the chosen method. It reports false
// when no candidate applies; ambiguity and static misuse are reported here
// and count as handled.
func (r *resolver) callOn(e *ast.MethodCall, owner string, cands []*types.MethodInfo, args []types.Type, staticOnly bool) (value, bool) {
	m, outcome := r.selectOverload(cands, args)
	switch outcome {
	case inapplicable:
		return value{}, false
	case ambiguous:
		r.errorf(e.Pos(), "ambiguous call to '%s(%s)' in type '%s'", e.Name, typeList(args), owner)
		return unknown, true
	}
	if staticOnly && !m.Static {
		r.errorf(e.Pos(), "non-static method '%s' cannot be referenced from a static context", e.Name)
		return unknown, true
	}
	r.record(e.Pos(), Symbol{
		Kind:   MethodRef,
		Origin: OriginMethod,
		Owner:  m.Owner,
		Name:   e.Name,
		Target: r.env.TargetName("", m),
		Static: m.Static,
	})
	if m.Result == nil {
		return unknown, true
	}
	return value{typ: m.Result}, true
}

func (r *resolver) dynamicCall(e *ast.MethodCall, owner string, static bool) value {
	r.record(e.Pos(), Symbol{
		Kind:   MethodRef,
		Origin: OriginDynamic,
		Owner:  owner,
		Name:   e.Name,
		Target: e.Name,
		Static: static,
	})
	return unknown
}
