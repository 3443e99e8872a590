package resolve

import (
	"strings"

	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/types"
	"martianoff/stjs/stjserr"
)

// Options configures resolution.
type Options struct {
	// AllowedPackages lists the packages, and their subpackages, whose types
	// may be referenced. java.lang and the unit's own package are always
	// allowed.
	AllowedPackages []string
}

// Resolution is the outcome of resolving one unit.
type Resolution struct {
	Table *Table
	// Env is an overlay of the environment passed to Resolve that holds the
	// unit's own declaration.
	Env  *types.Environment
	Self *types.TypeInfo
}

// Resolve builds the resolution table of unit. It never stops at the first
// failure: every unresolvable reference is reported and the walk continues.
func Resolve(unit *ast.CompilationUnit, env *types.Environment, opts Options) (*Resolution, []error) {
	overlay := env.Overlay()
	res := &Resolution{Table: newTable(), Env: overlay}
	if unit == nil || unit.Type == nil {
		return res, []error{stjserr.NewResolutionError(source.Position{}, "unit declares no type")}
	}

	errs := Declare(overlay, unit)
	self, ok := overlay.Lookup(unit.QualifiedName())
	if !ok {
		return res, errs
	}
	res.Self = self

	r := &resolver{
		namer: namer{env: overlay, imports: newImportSet(unit)},
		unit:  unit,
		self:  self,
		opts:  opts,
		table: res.Table,
		errs:  errs,
	}
	r.checkImports()
	r.typeDecl(unit.Type)
	return res, r.errs
}

type resolver struct {
	namer
	unit  *ast.CompilationUnit
	self  *types.TypeInfo
	opts  Options
	table *Table
	scope *scope
	errs  []error
}

// value is what an expression denotes: a value of some static type, a type
// (for static member access) or a package prefix of a qualified name.
type value struct {
	typ      types.Type
	typeName string
	pkg      string
}

func (v value) isType() bool { return v.typeName != "" }

var unknown = value{typ: types.Unknown}

func (r *resolver) errorf(pos source.Position, format string, args ...any) {
	r.errs = append(r.errs, stjserr.NewResolutionError(pos, format, args...))
}

// record binds a reference site. Sites without a position cannot be keyed;
// the generator refuses them if it ever has to render one. Two different
// sites sharing a position is an error.
func (r *resolver) record(pos source.Position, sym Symbol) {
	if !pos.IsValid() {
		return
	}
	if prev, ok := r.table.record(pos, sym); !ok && !sameSite(prev, sym) {
		r.errorf(pos, "position is shared by '%s' and '%s'", prev.qualified(), sym.qualified())
	}
}

func (r *resolver) allowed(info *types.TypeInfo) bool {
	if info.Builtin {
		return true
	}
	pkg := info.Package()
	if pkg == types.LangPackage || pkg == r.unit.Package {
		return true
	}
	for _, p := range r.opts.AllowedPackages {
		if pkg == p || strings.HasPrefix(pkg, p+".") {
			return true
		}
	}
	return false
}

func (r *resolver) checkAllowed(pos source.Position, info *types.TypeInfo) {
	if !r.allowed(info) {
		r.errorf(pos, "type '%s' is not in an allowed package", info.Name)
	}
}

func (r *resolver) recordType(pos source.Position, name string, info *types.TypeInfo) value {
	r.checkAllowed(pos, info)
	r.record(pos, Symbol{
		Kind:   IdentifierRef,
		Origin: OriginType,
		Owner:  info.Name,
		Name:   name,
		Target: info.TargetName(),
		Static: true,
	})
	return value{typ: info.Type(), typeName: info.Name}
}

func (r *resolver) checkImports() {
	for _, imp := range r.unit.Imports {
		switch {
		case imp.Static:
			owner := imp.Name
			if !imp.Wildcard {
				owner = types.PackageOf(imp.Name)
			}
			info, ok := r.env.Lookup(owner)
			if !ok {
				r.errorf(imp.Pos(), "cannot resolve import '%s'", imp.Name)
				continue
			}
			r.checkAllowed(imp.Pos(), info)
		case imp.Wildcard:
			if !r.env.HasPackage(imp.Name) {
				r.errorf(imp.Pos(), "cannot resolve import '%s'", imp.Name)
			}
		default:
			info, ok := r.env.Lookup(imp.Name)
			if !ok {
				r.errorf(imp.Pos(), "cannot resolve import '%s'", imp.Name)
				continue
			}
			r.checkAllowed(imp.Pos(), info)
		}
	}
}

// typeRef resolves a written type and records a symbol for every named type
// it mentions.
func (r *resolver) typeRef(ref *ast.TypeRef) types.Type {
	if ref == nil {
		return types.Unknown
	}
	return r.convert(ref, func(ref *ast.TypeRef, info *types.TypeInfo, ok bool) {
		if !ok {
			r.errorf(ref.Pos(), "cannot resolve type '%s'", ref.Name)
			return
		}
		r.recordType(ref.Pos(), ref.Name, info)
	})
}

// ---- declarations ----

func (r *resolver) typeDecl(decl ast.TypeDecl) {
	switch d := decl.(type) {
	case *ast.ClassDecl:
		r.typeRef(d.Extends)
		for _, ref := range d.Implements {
			r.typeRef(ref)
		}
		r.members(d.Members)
	case *ast.EnumDecl:
		for _, ref := range d.Implements {
			r.typeRef(ref)
		}
		for _, c := range d.Constants {
			for _, a := range c.Args {
				r.expr(a)
			}
		}
		r.members(d.Members)
	}
}

func (r *resolver) members(members []ast.Member) {
	for _, m := range members {
		switch m := m.(type) {
		case *ast.FieldDecl:
			r.typeRef(m.Type)
			if m.Init != nil {
				r.expr(m.Init)
			}
		case *ast.MethodDecl:
			r.pushScope()
			for _, p := range m.Params {
				r.param(p)
			}
			if m.Result != nil {
				r.typeRef(m.Result)
			}
			r.recordMethodDecl(m)
			if m.Body != nil {
				r.block(m.Body)
			}
			r.popScope()
		case *ast.ConstructorDecl:
			r.pushScope()
			for _, p := range m.Params {
				r.param(p)
			}
			if m.Body != nil {
				r.block(m.Body)
			}
			r.popScope()
		case *ast.Initializer:
			if m.Body != nil {
				r.block(m.Body)
			}
		}
		// nested type declarations are refused by the generator
	}
}

// recordMethodDecl binds a method declaration to its generated name, using
// the same naming rule as call sites.
func (r *resolver) recordMethodDecl(m *ast.MethodDecl) {
	for _, info := range r.self.Methods {
		if info.Pos != m.Pos() {
			continue
		}
		r.record(m.Pos(), Symbol{
			Kind:   MethodRef,
			Origin: OriginMethod,
			Owner:  info.Owner,
			Name:   info.Name,
			Target: r.env.TargetName("", info),
			Static: info.Static,
		})
		return
	}
}

func (r *resolver) param(p *ast.Param) types.Type {
	t := types.Unknown
	if p.Type != nil {
		t = r.typeRef(p.Type)
	}
	r.declareLocal(p.Name, t)
	return t
}

// ---- statements ----

func (r *resolver) block(b *ast.Block) {
	r.pushScope()
	for _, s := range b.Stmts {
		r.stmt(s)
	}
	r.popScope()
}

func (r *resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case nil:
	case *ast.Block:
		r.block(s)
	case *ast.LocalVar:
		r.localVar(s)
	case *ast.ExprStmt:
		r.expr(s.X)
	case *ast.If:
		r.expr(s.Cond)
		r.stmt(s.Then)
		r.stmt(s.Else)
	case *ast.While:
		r.expr(s.Cond)
		r.stmt(s.Body)
	case *ast.DoWhile:
		r.stmt(s.Body)
		r.expr(s.Cond)
	case *ast.For:
		r.pushScope()
		for _, init := range s.Init {
			r.stmt(init)
		}
		r.expr(s.Cond)
		for _, u := range s.Update {
			r.expr(u)
		}
		r.stmt(s.Body)
		r.popScope()
	case *ast.ForEach:
		r.pushScope()
		iter := r.expr(s.Iterable)
		var t types.Type
		if s.VarType == nil || s.VarType.Name == "var" {
			t = types.Unknown
			if arr, ok := iter.typ.(types.ArrayType); ok {
				t = arr.Elem
			}
		} else {
			t = r.typeRef(s.VarType)
		}
		r.declareLocal(s.VarName, t)
		r.stmt(s.Body)
		r.popScope()
	case *ast.Switch:
		r.switchStmt(s)
	case *ast.Return:
		r.expr(s.X)
	case *ast.Throw:
		r.expr(s.X)
	case *ast.Try:
		if s.Body != nil {
			r.block(s.Body)
		}
		for _, c := range s.Catches {
			r.pushScope()
			if c.Param != nil {
				r.param(c.Param)
			}
			if c.Body != nil {
				r.block(c.Body)
			}
			r.popScope()
		}
		if s.Finally != nil {
			r.block(s.Finally)
		}
	case *ast.Break, *ast.Continue, *ast.Empty:
	}
}

func (r *resolver) localVar(s *ast.LocalVar) {
	var t types.Type
	inferred := s.Type == nil || s.Type.Name == "var"
	if !inferred {
		t = r.typeRef(s.Type)
	}
	if s.Init != nil {
		v := r.expr(s.Init)
		if inferred {
			t = v.typ
		}
	}
	// the variable is in scope only after its initializer
	r.declareLocal(s.Name, t)
}

func (r *resolver) switchStmt(s *ast.Switch) {
	sel := r.expr(s.Selector)
	var enum *types.TypeInfo
	if info, ok := r.env.Lookup(types.QualifiedName(sel.typ)); ok && info.Kind == types.KindEnum {
		enum = info
	}
	r.pushScope()
	for _, c := range s.Cases {
		for _, label := range c.Labels {
			name, isName := label.(*ast.Name)
			if enum == nil || !isName {
				r.expr(label)
				continue
			}
			if !enum.HasConstant(name.Ident) {
				r.errorf(name.Pos(), "'%s' is not a constant of enum '%s'", name.Ident, enum.Name)
				continue
			}
			r.record(name.Pos(), Symbol{
				Kind:   IdentifierRef,
				Origin: OriginEnumConstant,
				Owner:  enum.Name,
				Name:   name.Ident,
				Target: name.Ident,
				Static: true,
			})
		}
		for _, st := range c.Body {
			r.stmt(st)
		}
	}
	r.popScope()
}
