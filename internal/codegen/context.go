package codegen

import (
	"martianoff/stjs/internal/resolve"
	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/types"
	"martianoff/stjs/stjserr"
)

// Context is the state shared by every contributor while one unit is
// translated.
type Context struct {
	Table   *resolve.Table
	Env     *types.Environment
	Self    *types.TypeInfo
	Unit    string // fully qualified name of the unit's type
	File    string
	Options Options

	bag          *stjserr.Bag
	deps         []string
	depSeen      map[string]bool
	hooksEnabled bool
}

func newContext(res *resolve.Resolution, unit, file string, opts Options) *Context {
	return &Context{
		Table:        res.Table,
		Env:          res.Env,
		Self:         res.Self,
		Unit:         unit,
		File:         file,
		Options:      opts,
		bag:          stjserr.NewBag(opts.MaxDiagnostics),
		depSeen:      make(map[string]bool),
		hooksEnabled: true,
	}
}

// HooksEnabled reports whether optional contributors run.
func (c *Context) HooksEnabled() bool {
	return c.hooksEnabled
}

// DisableHooks turns optional contributors off until the returned function
// is called, which restores the previous state. Calls nest.
func (c *Context) DisableHooks() (restore func()) {
	prev := c.hooksEnabled
	c.hooksEnabled = false
	return func() { c.hooksEnabled = prev }
}

// Report adds a diagnostic.
func (c *Context) Report(err error) {
	c.bag.Add(err)
}

// Unsupported reports a construct with no JavaScript rendering.
func (c *Context) Unsupported(pos source.Position, format string, args ...any) {
	c.bag.Add(stjserr.NewUnsupportedError(pos, format, args...))
}

// Errorf reports a generation failure.
func (c *Context) Errorf(pos source.Position, format string, args ...any) {
	c.bag.Add(stjserr.NewGenerationError(pos, format, args...))
}

// Diagnostics returns how many diagnostics were reported so far.
func (c *Context) Diagnostics() int {
	return c.bag.Len() + c.bag.Dropped()
}

// Depend records that the generated code references the type qualified.
// The unit itself and runtime builtins are not dependencies.
func (c *Context) Depend(qualified string) {
	if qualified == "" || qualified == c.Unit || c.depSeen[qualified] {
		return
	}
	if info, ok := c.Env.Lookup(qualified); ok && info.Builtin {
		return
	}
	c.depSeen[qualified] = true
	c.deps = append(c.deps, qualified)
}

// Dependencies returns the referenced types in first-seen order.
func (c *Context) Dependencies() []string {
	out := make([]string, len(c.deps))
	copy(out, c.deps)
	return out
}
