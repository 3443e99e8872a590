// Package codegen turns a resolved compilation unit into JavaScript. Every
// syntax kind is handled by a chain of contributors looked up in a Registry;
// contributors build js nodes which the Printer writes out together with a
// source map.
package codegen

import (
	"sync"

	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/js"
)

// Verdict tells the chain what to do after a contributor ran.
type Verdict uint8

const (
	// Decline leaves the running result untouched and moves on.
	Decline Verdict = iota
	// Partial replaces the running result and moves on.
	Partial
	// Commit replaces the running result and stops the chain.
	Commit
)

func (v Verdict) String() string {
	switch v {
	case Partial:
		return "partial"
	case Commit:
		return "commit"
	}
	return "decline"
}

// Result is what a chain produced for one node: an expression, statements,
// or nothing.
type Result struct {
	Expr  js.Expr
	Stmts []js.Stmt
}

// Empty reports whether r carries no output.
func (r Result) Empty() bool {
	return r.Expr == nil && len(r.Stmts) == 0
}

// Contributor handles one syntax kind. prev is the result accumulated by the
// contributors that ran before it.
type Contributor interface {
	Name() string
	Contribute(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict)
}

// Hook marks optional contributors. They are skipped while hooks are
// disabled on the context.
type Hook interface {
	Contributor
	Optional() bool
}

// ContributeFunc is the signature of a contributor body.
type ContributeFunc func(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict)

type funcContributor struct {
	name string
	hook bool
	fn   ContributeFunc
}

func (c *funcContributor) Name() string { return c.name }

func (c *funcContributor) Contribute(t *Translator, n ast.Node, ctx *Context, prev Result) (Result, Verdict) {
	return c.fn(t, n, ctx, prev)
}

func (c *funcContributor) Optional() bool { return c.hook }

// Rule wraps fn as a mandatory contributor.
func Rule(name string, fn ContributeFunc) Contributor {
	return &funcContributor{name: name, fn: fn}
}

// HookRule wraps fn as an optional contributor.
func HookRule(name string, fn ContributeFunc) Hook {
	return &funcContributor{name: name, hook: true, fn: fn}
}

// Registry maps syntax kinds to ordered contributor chains.
//
// Thread-safe: chains can be read while other goroutines translate units.
type Registry struct {
	mu     sync.RWMutex
	chains map[ast.Kind][]Contributor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{chains: make(map[ast.Kind][]Contributor)}
}

// Register appends c to the chain of kind.
func (r *Registry) Register(kind ast.Kind, c Contributor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[kind] = append(r.chains[kind], c)
}

// Chain returns a copy of the chain registered for kind, in registration
// order.
func (r *Registry) Chain(kind ast.Kind) []Contributor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain := r.chains[kind]
	out := make([]Contributor, len(chain))
	copy(out, chain)
	return out
}

// Kinds returns how many kinds have at least one contributor.
func (r *Registry) Kinds() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chains)
}
