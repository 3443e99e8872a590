// Package emit holds the generated form of a compilation unit and the
// files it is written to.
package emit

import (
	"path"
	"path/filepath"
	"strings"

	"martianoff/stjs/internal/sourcemap"
)

// File extensions of a unit's outputs.
const (
	ExtJS       = ".js"
	ExtMap      = ".map"
	ExtManifest = ".stjs"
)

// Unit is one generated JavaScript file. Dependencies are the qualified
// names of the units it references, in first-reference order.
type Unit struct {
	ID           string
	Source       string
	Text         string
	Dependencies []string
	Map          *sourcemap.Map
}

// SimpleName returns the last segment of the unit id.
func (u *Unit) SimpleName() string {
	return simpleName(u.ID)
}

// Lines counts the lines of the unit text. A final line without a trailing
// newline still counts.
func (u *Unit) Lines() int {
	if u.Text == "" {
		return 0
	}
	n := strings.Count(u.Text, "\n")
	if !strings.HasSuffix(u.Text, "\n") {
		n++
	}
	return n
}

// Body returns the unit text without its trailing source map link.
func (u *Unit) Body() string {
	lines := strings.SplitAfter(u.Text, "\n")
	for len(lines) > 0 {
		last := lines[len(lines)-1]
		if strings.TrimSpace(last) == "" || sourcemap.IsComment(last) {
			lines = lines[:len(lines)-1]
			continue
		}
		break
	}
	body := strings.Join(lines, "")
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body
}

// Paths lists where a unit's files live below an output root.
type Paths struct {
	JS       string
	Map      string
	Manifest string
}

// PathsFor returns the output paths of unit id below root: the package
// becomes a directory and the simple name the file stem.
func PathsFor(root, id string) Paths {
	stem := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(id, ".", "/")))
	return Paths{
		JS:       stem + ExtJS,
		Map:      stem + ExtMap,
		Manifest: stem + ExtManifest,
	}
}

// RelDir returns the slash-separated directory holding the files of unit
// id, relative to the output root. It is "." for units without a package.
func RelDir(id string) string {
	return path.Dir(strings.ReplaceAll(id, ".", "/"))
}

func simpleName(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}
