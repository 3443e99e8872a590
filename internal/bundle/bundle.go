// Package bundle concatenates generated units into one script in an order
// where every unit loads after the units it depends on.
package bundle

import (
	"fmt"
	"path/filepath"
	"strings"

	"martianoff/stjs/internal/emit"
	"martianoff/stjs/internal/sourcemap"
)

// Options configures a bundle.
type Options struct {
	// Name is the artifact stem: <Name>.js and <Name>.map.
	Name string
	// Banner lines are written first, verbatim.
	Banner []string
	// SourceMap stitches the unit maps into an index map.
	SourceMap bool
}

// Artifact is a bundled script.
type Artifact struct {
	Name  string
	Text  string
	Order []string
	Map   *sourcemap.IndexMap // nil unless requested
}

// Bundle orders units by their dependencies and concatenates them. A
// dependency cycle fails with *CycleError and no artifact.
func Bundle(units []*emit.Unit, opts Options) (*Artifact, error) {
	d, err := newDepGraph(units)
	if err != nil {
		return nil, err
	}
	order, err := d.order()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*emit.Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	var sb strings.Builder
	line := 0
	for _, b := range opts.Banner {
		sb.WriteString(b)
		sb.WriteByte('\n')
		line++
	}

	var st *Stitcher
	if opts.SourceMap {
		st = NewStitcher(opts.Name + emit.ExtJS)
	}
	for _, id := range order {
		u := byID[id]
		body := u.Body()
		n := strings.Count(body, "\n")
		if st != nil {
			if err := st.Add(line, n, u); err != nil {
				return nil, err
			}
		}
		sb.WriteString(body)
		line += n
	}

	a := &Artifact{Name: opts.Name, Order: order}
	if st != nil {
		a.Map = st.Map()
		sb.WriteString(sourcemap.Comment(opts.Name + emit.ExtMap))
		sb.WriteByte('\n')
	}
	a.Text = sb.String()
	return a, nil
}

// Write stores the artifact in dir, each file replaced atomically. It
// returns the path of the script.
func (a *Artifact) Write(dir string) (string, error) {
	js := filepath.Join(dir, a.Name+emit.ExtJS)
	if a.Map != nil {
		data, err := a.Map.Encode()
		if err != nil {
			return js, fmt.Errorf("encoding bundle map: %w", err)
		}
		if err := emit.WriteFile(filepath.Join(dir, a.Name+emit.ExtMap), data); err != nil {
			return js, err
		}
	}
	return js, emit.WriteFile(js, []byte(a.Text))
}
