package resolve

import (
	"martianoff/stjs/internal/types"
)

// scope holds the locals and parameters declared in one block.
type scope struct {
	vars   map[string]types.Type
	parent *scope
}

func (r *resolver) pushScope() {
	r.scope = &scope{
		vars:   make(map[string]types.Type),
		parent: r.scope,
	}
}

func (r *resolver) popScope() {
	if r.scope != nil {
		r.scope = r.scope.parent
	}
}

func (r *resolver) declareLocal(name string, t types.Type) {
	if r.scope == nil || name == "" {
		return
	}
	if t == nil {
		t = types.Unknown
	}
	r.scope.vars[name] = t
}

// lookupLocal searches the scope chain, innermost first.
func (r *resolver) lookupLocal(name string) (types.Type, bool) {
	for s := r.scope; s != nil; s = s.parent {
		if t, ok := s.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}
