// Package resolve maps every reference site of a compilation unit to the
// symbol it denotes, before any code is generated.
package resolve

import (
	"fmt"
	"sort"

	"martianoff/stjs/internal/source"
)

// Kind separates method references from every other identifier.
type Kind uint8

const (
	IdentifierRef Kind = iota
	MethodRef
)

func (k Kind) String() string {
	if k == MethodRef {
		return "method"
	}
	return "identifier"
}

// Origin says what an identifier was bound to.
type Origin uint8

const (
	OriginLocal Origin = iota
	OriginField
	OriginType
	OriginEnumConstant
	OriginMethod
	// OriginDynamic marks members of types whose member list is unknown.
	// They are rendered by name, without compile-time binding.
	OriginDynamic
)

var originNames = [...]string{
	OriginLocal:        "local",
	OriginField:        "field",
	OriginType:         "type",
	OriginEnumConstant: "enum-constant",
	OriginMethod:       "method",
	OriginDynamic:      "dynamic",
}

func (o Origin) String() string {
	if int(o) < len(originNames) {
		return originNames[o]
	}
	return "unknown"
}

// Symbol is what the resolver decided a reference site means.
type Symbol struct {
	Kind   Kind
	Origin Origin
	Owner  string // fully qualified declaring type; empty for locals
	Name   string // name as written
	Target string // name in the generated code
	Static bool
}

func (s Symbol) String() string {
	owner := s.Owner
	if owner == "" {
		owner = "-"
	}
	static := ""
	if s.Static {
		static = " static"
	}
	return fmt.Sprintf("%s %s %s.%s -> %s%s", s.Kind, s.Origin, owner, s.Name, s.Target, static)
}

// Table maps reference positions to symbols. It is filled by the resolver
// and read-only afterwards.
type Table struct {
	symbols map[source.Position]Symbol
}

func newTable() *Table {
	return &Table{symbols: make(map[source.Position]Symbol)}
}

// record keeps the first symbol recorded for a position. When the position
// is taken it returns the symbol already there and false.
func (t *Table) record(pos source.Position, sym Symbol) (Symbol, bool) {
	if prev, exists := t.symbols[pos]; exists {
		return prev, false
	}
	t.symbols[pos] = sym
	return sym, true
}

// sameSite reports whether two symbols recorded at one position can come
// from the same reference site.
func sameSite(a, b Symbol) bool {
	return a.Kind == b.Kind && a.Owner == b.Owner && a.Name == b.Name
}

func (s Symbol) qualified() string {
	if s.Owner == "" {
		return s.Name
	}
	return s.Owner + "." + s.Name
}

// Lookup returns the symbol recorded at pos.
func (t *Table) Lookup(pos source.Position) (Symbol, bool) {
	if t == nil {
		return Symbol{}, false
	}
	sym, ok := t.symbols[pos]
	return sym, ok
}

// Method returns the method symbol recorded at pos.
func (t *Table) Method(pos source.Position) (Symbol, bool) {
	sym, ok := t.Lookup(pos)
	if !ok || sym.Kind != MethodRef {
		return Symbol{}, false
	}
	return sym, true
}

// Identifier returns the non-method symbol recorded at pos.
func (t *Table) Identifier(pos source.Position) (Symbol, bool) {
	sym, ok := t.Lookup(pos)
	if !ok || sym.Kind != IdentifierRef {
		return Symbol{}, false
	}
	return sym, true
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.symbols)
}

// Positions returns every recorded position in source order.
func (t *Table) Positions() []source.Position {
	out := make([]source.Position, 0, t.Len())
	if t == nil {
		return out
	}
	for pos := range t.symbols {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
