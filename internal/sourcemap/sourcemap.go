// Package sourcemap writes and reads Source Map revision 3 documents, both
// plain maps and index maps made of sections.
package sourcemap

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"martianoff/stjs/internal/source"
)

// Version is the only revision this package reads and writes.
const Version = 3

// Map is a plain source map.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Mapping ties a generated position to an original one. Lines and columns
// are zero-based, as in the encoded form.
type Mapping struct {
	GenLine int
	GenCol  int
	Source  string
	SrcLine int
	SrcCol  int
	Name    string
}

// Generator accumulates mappings for one generated file.
type Generator struct {
	file     string
	sources  []string
	srcIndex map[string]int
	names    []string
	nameIdx  map[string]int
	mappings []Mapping
}

func NewGenerator(file string) *Generator {
	return &Generator{
		file:     file,
		srcIndex: make(map[string]int),
		nameIdx:  make(map[string]int),
	}
}

// AddPosition maps a zero-based generated position to an original position.
// Positions without a line are ignored.
func (g *Generator) AddPosition(genLine, genCol int, pos source.Position) {
	if !pos.IsValid() {
		return
	}
	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	g.Add(Mapping{GenLine: genLine, GenCol: genCol, Source: pos.File, SrcLine: pos.Line - 1, SrcCol: col})
}

func (g *Generator) Add(m Mapping) {
	if _, ok := g.srcIndex[m.Source]; !ok {
		g.srcIndex[m.Source] = len(g.sources)
		g.sources = append(g.sources, m.Source)
	}
	if m.Name != "" {
		if _, ok := g.nameIdx[m.Name]; !ok {
			g.nameIdx[m.Name] = len(g.names)
			g.names = append(g.names, m.Name)
		}
	}
	g.mappings = append(g.mappings, m)
}

func (g *Generator) Len() int {
	return len(g.mappings)
}

// Map encodes everything added so far.
func (g *Generator) Map() *Map {
	ms := make([]Mapping, len(g.mappings))
	copy(ms, g.mappings)
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].GenLine != ms[j].GenLine {
			return ms[i].GenLine < ms[j].GenLine
		}
		return ms[i].GenCol < ms[j].GenCol
	})
	sources := make([]string, len(g.sources))
	copy(sources, g.sources)
	names := make([]string, len(g.names))
	copy(names, g.names)
	return &Map{
		Version:  Version,
		File:     g.file,
		Sources:  sources,
		Names:    names,
		Mappings: encode(ms, g.srcIndex, g.nameIdx),
	}
}

// encode expects mappings sorted by generated position.
func encode(ms []Mapping, srcIndex, nameIdx map[string]int) string {
	var buf []byte
	line, prevCol, prevSrc, prevLine, prevSrcCol, prevName := 0, 0, 0, 0, 0, 0
	first := true
	for _, m := range ms {
		for line < m.GenLine {
			buf = append(buf, ';')
			line++
			prevCol = 0
			first = true
		}
		if !first {
			buf = append(buf, ',')
		}
		first = false

		buf = appendVLQ(buf, m.GenCol-prevCol)
		prevCol = m.GenCol
		src := srcIndex[m.Source]
		buf = appendVLQ(buf, src-prevSrc)
		prevSrc = src
		buf = appendVLQ(buf, m.SrcLine-prevLine)
		prevLine = m.SrcLine
		buf = appendVLQ(buf, m.SrcCol-prevSrcCol)
		prevSrcCol = m.SrcCol
		if m.Name != "" {
			n := nameIdx[m.Name]
			buf = appendVLQ(buf, n-prevName)
			prevName = n
		}
	}
	return string(buf)
}

// Decode expands the mappings of m. Segments with a single field carry no
// original position and are skipped.
func (m *Map) Decode() ([]Mapping, error) {
	var out []Mapping
	line, col, src, srcLine, srcCol, name := 0, 0, 0, 0, 0, 0
	s := m.Mappings
	for i := 0; i < len(s); {
		switch s[i] {
		case ';':
			line++
			col = 0
			i++
			continue
		case ',':
			i++
			continue
		}
		var fields [5]int
		n := 0
		for i < len(s) && s[i] != ',' && s[i] != ';' {
			if n == len(fields) {
				return nil, fmt.Errorf("line %d: segment has more than 5 fields", line)
			}
			v, next, err := decodeVLQ(s, i)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			fields[n] = v
			n++
			i = next
		}
		col += fields[0]
		if n == 1 {
			continue
		}
		if n < 4 {
			return nil, fmt.Errorf("line %d: segment has %d fields", line, n)
		}
		src += fields[1]
		srcLine += fields[2]
		srcCol += fields[3]
		if src < 0 || src >= len(m.Sources) {
			return nil, fmt.Errorf("line %d: source index %d out of range", line, src)
		}
		mp := Mapping{GenLine: line, GenCol: col, Source: m.Sources[src], SrcLine: srcLine, SrcCol: srcCol}
		if n == 5 {
			name += fields[4]
			if name < 0 || name >= len(m.Names) {
				return nil, fmt.Errorf("line %d: name index %d out of range", line, name)
			}
			mp.Name = m.Names[name]
		}
		out = append(out, mp)
	}
	return out, nil
}

// Truncate returns a copy of m without the mappings on generated lines at
// or past lines.
func (m *Map) Truncate(lines int) (*Map, error) {
	ms, err := m.Decode()
	if err != nil {
		return nil, err
	}
	g := NewGenerator(m.File)
	for _, mp := range ms {
		if mp.GenLine < lines {
			g.Add(mp)
		}
	}
	out := g.Map()
	out.SourceRoot = m.SourceRoot
	if len(m.SourcesContent) > 0 {
		out.SourcesContent = reorderContent(m, out.Sources)
	}
	return out, nil
}

func reorderContent(m *Map, sources []string) []string {
	byName := make(map[string]string, len(m.Sources))
	for i, s := range m.Sources {
		if i < len(m.SourcesContent) {
			byName[s] = m.SourcesContent[i]
		}
	}
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = byName[s]
	}
	return out
}

// Lines returns how many generated lines the mappings span.
func (m *Map) Lines() int {
	if m.Mappings == "" {
		return 0
	}
	return strings.Count(m.Mappings, ";") + 1
}

// Encode serializes m as JSON.
func (m *Map) Encode() ([]byte, error) {
	if m.Sources == nil {
		m.Sources = []string{}
	}
	if m.Names == nil {
		m.Names = []string{}
	}
	return json.Marshal(m)
}

// Parse reads a plain source map.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing source map: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("unsupported source map version %d", m.Version)
	}
	return &m, nil
}

// Offset is where a section starts in the generated file.
type Offset struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Section embeds the map of one part of a concatenated file.
type Section struct {
	Offset Offset `json:"offset"`
	Map    *Map   `json:"map"`
}

// IndexMap is a source map made of sections, one per concatenated part.
type IndexMap struct {
	Version  int       `json:"version"`
	File     string    `json:"file,omitempty"`
	Sections []Section `json:"sections"`
}

func NewIndexMap(file string) *IndexMap {
	return &IndexMap{Version: Version, File: file, Sections: []Section{}}
}

// Add appends a section starting at line. Sections must be added in
// strictly increasing order.
func (ix *IndexMap) Add(line int, m *Map) error {
	if n := len(ix.Sections); n > 0 && ix.Sections[n-1].Offset.Line >= line {
		return fmt.Errorf("section at line %d does not follow section at line %d", line, ix.Sections[n-1].Offset.Line)
	}
	ix.Sections = append(ix.Sections, Section{Offset: Offset{Line: line}, Map: m})
	return nil
}

func (ix *IndexMap) Encode() ([]byte, error) {
	return json.Marshal(ix)
}

// ParseIndex reads an index map.
func ParseIndex(data []byte) (*IndexMap, error) {
	var ix IndexMap
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("parsing index map: %w", err)
	}
	if ix.Version != Version {
		return nil, fmt.Errorf("unsupported source map version %d", ix.Version)
	}
	return &ix, nil
}

// Comment returns the trailing line linking a generated file to its map.
func Comment(mapFile string) string {
	return "//# sourceMappingURL=" + mapFile
}

// IsComment reports whether line is a source map link, in the current or
// the legacy spelling.
func IsComment(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "//# sourceMappingURL=") || strings.HasPrefix(line, "//@ sourceMappingURL=")
}
