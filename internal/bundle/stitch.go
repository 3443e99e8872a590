package bundle

import (
	"fmt"
	"path"
	"strings"

	"martianoff/stjs/internal/emit"
	"martianoff/stjs/internal/sourcemap"
)

// Stitcher merges the maps of concatenated units into one index map.
type Stitcher struct {
	ix *sourcemap.IndexMap
}

func NewStitcher(file string) *Stitcher {
	return &Stitcher{ix: sourcemap.NewIndexMap(file)}
}

// Add records u as starting at output line offset and spanning lines
// lines. Mappings past the unit's own range are dropped. Units without a
// map add no section.
//
// Unit maps name their sources relative to the unit's own directory; the
// section copies are rebased onto the output root, where the index map is
// written.
func (s *Stitcher) Add(offset, lines int, u *emit.Unit) error {
	if u.Map == nil || lines == 0 {
		return nil
	}
	m, err := u.Map.Truncate(lines)
	if err != nil {
		return fmt.Errorf("source map of %s: %w", u.ID, err)
	}
	rebase(m, emit.RelDir(u.ID))
	return s.ix.Add(offset, m)
}

func rebase(m *sourcemap.Map, dir string) {
	if dir == "." {
		return
	}
	if m.SourceRoot != "" {
		if !absolute(m.SourceRoot) {
			m.SourceRoot = path.Join(dir, m.SourceRoot) + "/"
		}
		return
	}
	for i, src := range m.Sources {
		if !absolute(src) {
			m.Sources[i] = path.Join(dir, src)
		}
	}
}

func absolute(ref string) bool {
	return path.IsAbs(ref) || strings.Contains(ref, "://")
}

// Map returns the stitched index map.
func (s *Stitcher) Map() *sourcemap.IndexMap {
	return s.ix
}
