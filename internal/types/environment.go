package types

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"martianoff/stjs/internal/source"
)

// TypeKind distinguishes the three class-like declarations.
type TypeKind uint8

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
)

func (k TypeKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	}
	return "class"
}

// ParseTypeKind maps the document spelling of a kind.
func ParseTypeKind(s string) (TypeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "class":
		return KindClass, nil
	case "interface":
		return KindInterface, nil
	case "enum":
		return KindEnum, nil
	}
	return KindClass, fmt.Errorf("unknown type kind %q", s)
}

// FieldInfo describes a field or enum constant.
type FieldInfo struct {
	Name   string
	Type   Type
	Static bool
	Owner  string
	Pos    source.Position
}

// MethodInfo describes a method or constructor signature.
type MethodInfo struct {
	Name   string
	Params []Type
	Result Type
	Static bool
	Owner  string
	Pos    source.Position // declaration site, for types declared by a unit
}

// Signature is the erased parameter list, used to collapse overrides.
func (m *MethodInfo) Signature() string {
	parts := make([]string, len(m.Params))
	for i, p := range m.Params {
		parts[i] = Erasure(p).String()
	}
	return m.Name + "(" + strings.Join(parts, ",") + ")"
}

// TypeInfo describes one class, interface or enum visible to a unit.
type TypeInfo struct {
	Name         string // fully qualified
	Kind         TypeKind
	Super        string // fully qualified superclass, "" for java.lang.Object and interfaces
	Interfaces   []string
	Namespace    string // target-language namespace prefix, if any
	Open         bool   // member list is incomplete; unknown members resolve dynamically
	Builtin      bool   // provided by the runtime, never part of a bundle
	Fields       []*FieldInfo
	Methods      []*MethodInfo
	Constructors []*MethodInfo
	Constants    []string
	Pos          source.Position
}

func (t *TypeInfo) Package() string    { return PackageOf(t.Name) }
func (t *TypeInfo) SimpleName() string { return SimpleName(t.Name) }

// TargetName is the name the generated code uses to reference the type.
func (t *TypeInfo) TargetName() string {
	if t.Namespace != "" {
		return t.Namespace + "." + t.SimpleName()
	}
	return t.SimpleName()
}

// Type returns the NamedType for this declaration.
func (t *TypeInfo) Type() NamedType {
	return Named(t.Name)
}

// HasConstant reports whether name is an enum constant of t.
func (t *TypeInfo) HasConstant(name string) bool {
	for _, c := range t.Constants {
		if c == name {
			return true
		}
	}
	return false
}

// Environment is the set of types visible to a compilation unit.
//
// Thread-safe: all methods can be called concurrently. Overlays read their
// parent but never write to it, so one base environment can serve units that
// are resolved in parallel.
type Environment struct {
	mu       sync.RWMutex
	parent   *Environment
	types    map[string]*TypeInfo
	packages map[string]bool
}

// NewEnvironment creates an environment holding only the builtin types.
func NewEnvironment() *Environment {
	e := newEmpty(nil)
	registerBuiltins(e)
	return e
}

func newEmpty(parent *Environment) *Environment {
	return &Environment{
		parent:   parent,
		types:    make(map[string]*TypeInfo),
		packages: make(map[string]bool),
	}
}

// Overlay returns a child environment. Registrations on the child shadow the
// parent and are invisible to it.
func (e *Environment) Overlay() *Environment {
	return newEmpty(e)
}

// Register adds a type. Registering a name twice in the same environment is
// an error; shadowing a parent's type is allowed.
func (e *Environment) Register(info *TypeInfo) error {
	if info == nil || info.Name == "" {
		return fmt.Errorf("type without a name")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.types[info.Name]; exists {
		return &ConflictError{Name: info.Name}
	}
	for _, f := range info.Fields {
		f.Owner = info.Name
	}
	for _, m := range info.Methods {
		m.Owner = info.Name
	}
	for _, c := range info.Constructors {
		c.Owner = info.Name
	}
	e.types[info.Name] = info

	// Index every enclosing package so qualified names can be split
	pkg := info.Package()
	for pkg != "" {
		e.packages[pkg] = true
		pkg = PackageOf(pkg)
	}
	return nil
}

// ConflictError is returned when a type is registered twice.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("type '%s' is already registered", e.Name)
}

// Lookup finds a type by fully qualified name.
func (e *Environment) Lookup(qualified string) (*TypeInfo, bool) {
	for env := e; env != nil; env = env.parent {
		env.mu.RLock()
		info, ok := env.types[qualified]
		env.mu.RUnlock()
		if ok {
			return info, true
		}
	}
	return nil, false
}

// HasPackage reports whether any visible type lives in pkg or below it.
func (e *Environment) HasPackage(pkg string) bool {
	for env := e; env != nil; env = env.parent {
		env.mu.RLock()
		ok := env.packages[pkg]
		env.mu.RUnlock()
		if ok {
			return true
		}
	}
	return false
}

// Names returns every visible type name, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	for env := e; env != nil; env = env.parent {
		env.mu.RLock()
		for name := range env.types {
			seen[name] = true
		}
		env.mu.RUnlock()
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hierarchy returns t followed by all of its supertypes, breadth first, each
// once. Every type other than Object reaches Object, interfaces included.
// complete is false when a supertype is missing from the environment or one
// of the visited types is open.
func (e *Environment) Hierarchy(qualified string) (chain []*TypeInfo, complete bool) {
	complete = true
	seen := make(map[string]bool)
	queue := []string{qualified}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		info, ok := e.Lookup(name)
		if !ok {
			complete = false
			continue
		}
		if info.Open {
			complete = false
		}
		chain = append(chain, info)
		if info.Super != "" {
			queue = append(queue, info.Super)
		} else if info.Name != Object.String() {
			queue = append(queue, Object.String())
		}
		queue = append(queue, info.Interfaces...)
	}
	return chain, complete
}

// IsSubtype reports whether sub equals super or inherits from it.
func (e *Environment) IsSubtype(sub, super string) bool {
	if sub == super || super == Object.String() {
		return true
	}
	chain, _ := e.Hierarchy(sub)
	for _, info := range chain {
		if info.Name == super {
			return true
		}
	}
	return false
}

// FindField looks a field up on owner and its supertypes. The field is nil
// when nothing matched; complete then tells whether the miss is definite.
func (e *Environment) FindField(owner, name string) (field *FieldInfo, complete bool) {
	chain, complete := e.Hierarchy(owner)
	for _, info := range chain {
		for _, f := range info.Fields {
			if f.Name == name {
				return f, true
			}
		}
		if info.HasConstant(name) {
			return &FieldInfo{Name: name, Type: info.Type(), Static: true, Owner: info.Name}, true
		}
	}
	return nil, complete
}

// Methods returns every method called name visible on owner, most derived
// first, with overridden signatures collapsed. complete has the same meaning
// as for Hierarchy.
func (e *Environment) Methods(owner, name string) ([]*MethodInfo, bool) {
	chain, complete := e.Hierarchy(owner)
	seen := make(map[string]bool)
	var out []*MethodInfo
	for _, info := range chain {
		for _, m := range info.Methods {
			if m.Name != name {
				continue
			}
			sig := m.Signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true
			out = append(out, m)
		}
	}
	return out, complete
}

// TargetName returns the generated name of m as seen from the type view.
// Names with a single visible signature stay as they are; overloaded names
// are suffixed with their parameter types so each overload gets its own slot.
func (e *Environment) TargetName(view string, m *MethodInfo) string {
	if view == "" {
		view = m.Owner
	}
	overloads, _ := e.Methods(view, m.Name)
	if len(overloads) <= 1 {
		return m.Name
	}
	var sb strings.Builder
	sb.WriteString(m.Name)
	sb.WriteByte('$')
	for i, p := range m.Params {
		if i > 0 {
			sb.WriteByte('$')
		}
		sb.WriteString(mangleParam(p))
	}
	return sb.String()
}

func mangleParam(t Type) string {
	switch v := Erasure(t).(type) {
	case ArrayType:
		return mangleParam(v.Elem) + "Array"
	case NamedType:
		return v.Name
	default:
		return v.String()
	}
}
