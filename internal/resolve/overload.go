package resolve

import (
	"strings"

	"martianoff/stjs/internal/types"
)

type outcome uint8

const (
	selected outcome = iota
	inapplicable
	ambiguous
)

// selectOverload picks the most specific applicable candidate for the given
// static argument types.
func (r *resolver) selectOverload(cands []*types.MethodInfo, args []types.Type) (*types.MethodInfo, outcome) {
	var applicable []*types.MethodInfo
	for _, m := range cands {
		if r.applicable(m, args) {
			applicable = append(applicable, m)
		}
	}
	switch len(applicable) {
	case 0:
		return nil, inapplicable
	case 1:
		return applicable[0], selected
	}

	var best []*types.MethodInfo
	for _, m := range applicable {
		mostSpecific := true
		for _, o := range applicable {
			if o != m && !r.env.MoreSpecific(m, o) {
				mostSpecific = false
				break
			}
		}
		if mostSpecific {
			best = append(best, m)
		}
	}
	if len(best) != 1 {
		return nil, ambiguous
	}
	return best[0], selected
}

func (r *resolver) applicable(m *types.MethodInfo, args []types.Type) bool {
	if len(m.Params) != len(args) {
		return false
	}
	for i, a := range args {
		if !r.env.Assignable(a, m.Params[i]) {
			return false
		}
	}
	return true
}

func typeList(ts []types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
