package resolve

import (
	"strings"

	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/types"
	"martianoff/stjs/stjserr"
)

// Declare registers the types declared by units into env. All names are
// registered before any member signature is computed, so units may refer to
// each other in any order. Only registration conflicts are returned; types
// that cannot be resolved in signatures are left unknown and reported when
// the unit itself is resolved.
func Declare(env *types.Environment, units ...*ast.CompilationUnit) []error {
	var errs []error
	infos := make([]*types.TypeInfo, len(units))
	for i, u := range units {
		if u == nil || u.Type == nil {
			continue
		}
		info := &types.TypeInfo{Name: u.QualifiedName(), Pos: u.Type.Pos()}
		if err := env.Register(info); err != nil {
			errs = append(errs, stjserr.NewResolutionError(u.Type.Pos(), "%v", err))
			continue
		}
		infos[i] = info
	}
	for i, u := range units {
		if infos[i] == nil {
			continue
		}
		n := namer{env: env, imports: newImportSet(u)}
		n.fill(infos[i], u.Type)
	}
	return errs
}

// fill computes the outline of decl: kind, supertypes and member signatures.
func (n *namer) fill(info *types.TypeInfo, decl ast.TypeDecl) {
	superName := func(ref *ast.TypeRef) string {
		if ref == nil {
			return ""
		}
		if t, ok := n.lookupType(ref.Name); ok {
			return t.Name
		}
		return ""
	}

	var members []ast.Member
	switch d := decl.(type) {
	case *ast.ClassDecl:
		members = d.Members
		info.Kind = types.KindClass
		if d.Interface {
			info.Kind = types.KindInterface
			// super-interfaces may appear under extends as well as implements
			if s := superName(d.Extends); s != "" {
				info.Interfaces = append(info.Interfaces, s)
			}
		} else {
			info.Super = superName(d.Extends)
		}
		for _, ref := range d.Implements {
			if s := superName(ref); s != "" {
				info.Interfaces = append(info.Interfaces, s)
			}
		}
	case *ast.EnumDecl:
		members = d.Members
		info.Kind = types.KindEnum
		info.Super = "java.lang.Enum"
		for _, ref := range d.Implements {
			if s := superName(ref); s != "" {
				info.Interfaces = append(info.Interfaces, s)
			}
		}
		for _, c := range d.Constants {
			info.Constants = append(info.Constants, c.Name)
		}
	}

	iface := info.Kind == types.KindInterface
	for _, m := range members {
		switch m := m.(type) {
		case *ast.FieldDecl:
			info.Fields = append(info.Fields, &types.FieldInfo{
				Name:   m.Name,
				Type:   n.convert(m.Type, nil),
				Static: iface || m.Modifiers.Static(),
				Owner:  info.Name,
				Pos:    m.Pos(),
			})
		case *ast.MethodDecl:
			info.Methods = append(info.Methods, &types.MethodInfo{
				Name:   m.Name,
				Params: n.paramTypes(m.Params),
				Result: n.resultType(m.Result),
				Static: m.Modifiers.Static(),
				Owner:  info.Name,
				Pos:    m.Pos(),
			})
		case *ast.ConstructorDecl:
			info.Constructors = append(info.Constructors, &types.MethodInfo{
				Name:   "<init>",
				Params: n.paramTypes(m.Params),
				Result: types.Void,
				Owner:  info.Name,
				Pos:    m.Pos(),
			})
		}
	}
}

func (n *namer) paramTypes(params []*ast.Param) []types.Type {
	out := make([]types.Type, len(params))
	for i, p := range params {
		out[i] = n.convert(p.Type, nil)
	}
	return out
}

func (n *namer) resultType(ref *ast.TypeRef) types.Type {
	if ref == nil {
		return types.Void
	}
	return n.convert(ref, nil)
}

// importSet indexes the imports of one unit.
type importSet struct {
	pkg            string
	self           string
	single         map[string]string // simple name -> qualified type
	onDemand       []string          // packages
	staticSingle   map[string]string // member name -> owner type
	staticOnDemand []string          // owner types
}

func newImportSet(u *ast.CompilationUnit) *importSet {
	s := &importSet{
		pkg:          u.Package,
		self:         u.QualifiedName(),
		single:       make(map[string]string),
		staticSingle: make(map[string]string),
	}
	for _, imp := range u.Imports {
		switch {
		case imp.Static && imp.Wildcard:
			s.staticOnDemand = append(s.staticOnDemand, imp.Name)
		case imp.Static:
			s.staticSingle[types.SimpleName(imp.Name)] = types.PackageOf(imp.Name)
		case imp.Wildcard:
			s.onDemand = append(s.onDemand, imp.Name)
		default:
			s.single[types.SimpleName(imp.Name)] = imp.Name
		}
	}
	return s
}

// namer turns type names as written into environment entries.
type namer struct {
	env     *types.Environment
	imports *importSet
}

// lookupType resolves a simple or qualified type name the way the source
// language does: own type, single-type imports, own package, on-demand
// imports, then java.lang.
func (n *namer) lookupType(name string) (*types.TypeInfo, bool) {
	if strings.Contains(name, ".") {
		return n.env.Lookup(name)
	}
	if name == types.SimpleName(n.imports.self) {
		if info, ok := n.env.Lookup(n.imports.self); ok {
			return info, true
		}
	}
	if q, ok := n.imports.single[name]; ok {
		return n.env.Lookup(q)
	}
	if info, ok := n.env.Lookup(qualify(n.imports.pkg, name)); ok {
		return info, true
	}
	for _, pkg := range n.imports.onDemand {
		if info, ok := n.env.Lookup(qualify(pkg, name)); ok {
			return info, true
		}
	}
	return n.env.Lookup(qualify(types.LangPackage, name))
}

// typeVisitor is told about every named type reference convert meets.
type typeVisitor func(ref *ast.TypeRef, info *types.TypeInfo, ok bool)

// convert maps a written type to the type model. Unresolvable names become
// unknown types.
func (n *namer) convert(ref *ast.TypeRef, visit typeVisitor) types.Type {
	if ref == nil {
		return types.Unknown
	}
	var t types.Type
	switch {
	case ref.Name == "void":
		t = types.Void
	case types.IsPrimitiveType(ref.Name):
		t = types.BasicType{Name: ref.Name}
	default:
		info, ok := n.lookupType(ref.Name)
		if visit != nil {
			visit(ref, info, ok)
		}
		if !ok {
			t = types.Unknown
			break
		}
		t = info.Type()
		if len(ref.Args) > 0 {
			params := make([]types.Type, len(ref.Args))
			for i, a := range ref.Args {
				params[i] = n.convert(a, visit)
			}
			t = types.GenericType{Base: t, Params: params}
		}
	}
	for i := 0; i < ref.Rank; i++ {
		t = types.ArrayType{Elem: t}
	}
	return t
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
