package build

import (
	"fmt"
	"os"
	"path/filepath"

	"martianoff/stjs/internal/emit"
)

// Workspace is the output tree of a project.
type Workspace struct {
	// Config is the build configuration.
	Config *Config

	// ProjectDir is the absolute path source files are relative to.
	ProjectDir string

	// OutputDir is the absolute path of the output root.
	OutputDir string
}

// NewWorkspace creates the workspace of config.
func NewWorkspace(config *Config) (*Workspace, error) {
	projectDir, err := filepath.Abs(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}
	outputDir, err := filepath.Abs(config.OutputDir())
	if err != nil {
		return nil, fmt.Errorf("resolving output path: %w", err)
	}
	return &Workspace{
		Config:     config,
		ProjectDir: projectDir,
		OutputDir:  outputDir,
	}, nil
}

// Ensure creates the output root.
func (w *Workspace) Ensure() error {
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", w.OutputDir, err)
	}
	return nil
}

// Clean removes the output root.
func (w *Workspace) Clean() error {
	return os.RemoveAll(w.OutputDir)
}

// UnitPaths returns where unit id is written.
func (w *Workspace) UnitPaths(id string) emit.Paths {
	return emit.PathsFor(w.OutputDir, id)
}

// SourcePath resolves a unit's source file against the project.
func (w *Workspace) SourcePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(w.ProjectDir, filepath.FromSlash(file))
}

// SourceCopyPath returns where the source of unit id is copied: next to
// its generated script, under the source's base name.
func (w *Workspace) SourceCopyPath(id, file string) string {
	return filepath.Join(filepath.Dir(w.UnitPaths(id).JS), filepath.Base(filepath.FromSlash(file)))
}

// BundlePath returns the path of the bundle script.
func (w *Workspace) BundlePath() string {
	return filepath.Join(w.OutputDir, w.Config.Project.Name+emit.ExtJS)
}

// mapSource returns how the map of unit id refers to its source file:
// the copy's base name, or a path relative to the map.
func (w *Workspace) mapSource(id, file string, copied bool) string {
	if copied {
		return filepath.Base(filepath.FromSlash(file))
	}
	rel, err := filepath.Rel(filepath.Dir(w.UnitPaths(id).Map), w.SourcePath(file))
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}
