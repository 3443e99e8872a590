package build

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"martianoff/stjs/internal/ast"
	"martianoff/stjs/internal/bundle"
	"martianoff/stjs/internal/codegen"
	"martianoff/stjs/internal/emit"
	"martianoff/stjs/internal/resolve"
	"martianoff/stjs/internal/source"
	"martianoff/stjs/internal/transpiler"
	"martianoff/stjs/internal/types"
	"martianoff/stjs/stjserr"
)

// Builder orchestrates the build process for a project.
type Builder struct {
	config    *Config
	workspace *Workspace
	env       *types.Environment
	verbose   bool
	out       io.Writer
	log       *log.Logger
}

// NewBuilder validates config and loads its environment documents.
func NewBuilder(config *Config, verbose bool) (*Builder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	workspace, err := NewWorkspace(config)
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	b := &Builder{
		config:    config,
		workspace: workspace,
		env:       types.NewEnvironment(),
		verbose:   verbose,
		out:       os.Stdout,
		log:       log.New(os.Stderr, "stjs: ", 0),
	}
	for _, path := range config.EnvironmentFiles() {
		b.printf("Loading environment: %s\n", path)
		if err := b.env.LoadFile(path); err != nil {
			return nil, stjserr.NewConfigError(path, "%v", err)
		}
	}
	return b, nil
}

// SetOutput redirects verbose progress lines.
func (b *Builder) SetOutput(w io.Writer) {
	b.out = w
}

// SetLogger replaces the logger used for warnings.
func (b *Builder) SetLogger(l *log.Logger) {
	b.log = l
}

// Workspace returns the builder's workspace.
func (b *Builder) Workspace() *Workspace {
	return b.workspace
}

// Config returns the builder's config.
func (b *Builder) Config() *Config {
	return b.config
}

func (b *Builder) printf(format string, args ...any) {
	if b.verbose {
		fmt.Fprintf(b.out, format, args...)
	}
}

// Generate compiles every unit document in files and writes the results.
// A failing unit never stops the others; every failure lands in the
// report. With bundling enabled the bundle is written only when all units
// succeeded.
func (b *Builder) Generate(ctx context.Context, files []string) *stjserr.Report {
	start := time.Now()
	report := &stjserr.Report{}
	defer func() { report.Elapsed = time.Since(start) }()

	b.printf("Using output directory: %s\n", b.workspace.OutputDir)
	if err := b.workspace.Ensure(); err != nil {
		report.Add(err)
		return report
	}

	units := make([]*ast.CompilationUnit, len(files))
	failed := make([]error, len(files))
	for i, path := range files {
		u, err := ast.DecodeFile(path)
		if err != nil {
			failed[i] = &stjserr.UnitFailure{Unit: path, Errors: []error{err}}
			continue
		}
		units[i] = u
	}

	// Units are declared together in an overlay so they see each other and
	// the builder can run again.
	env := b.env.Overlay()
	b.declare(env, units, failed)

	gen := b.config.Generator
	tr := transpiler.New(env, transpiler.Options{
		Resolve: resolve.Options{AllowedPackages: allowedPackages(gen.AllowedPackages, units)},
		Generate: codegen.Options{
			IterationGuard: gen.IterationGuard,
			SourceMap:      gen.SourceMap,
			MaxDiagnostics: gen.MaxDiagnostics,
		},
	})

	// Results are stored by index, so no mutex is needed.
	results := make([]*emit.Unit, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(gen.Jobs)
	for i := range files {
		if failed[i] != nil {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			u, err := b.unit(tr, units[i])
			if err != nil {
				failed[i] = err
				return nil
			}
			results[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		report.Add(err)
		return report
	}

	var generated []*emit.Unit
	for i, path := range files {
		if failed[i] != nil {
			report.Add(failed[i])
			continue
		}
		report.Generated++
		generated = append(generated, results[i])
		b.printf("  %s -> %s\n", path, b.workspace.UnitPaths(results[i].ID).JS)
	}

	if gen.Bundle {
		if report.Failed() {
			b.log.Printf("skipping bundle %s: %d unit(s) failed", b.config.Project.Name, len(report.Failures))
			return report
		}
		if _, err := b.bundle(generated); err != nil {
			report.Add(err)
		}
	}
	return report
}

// Bundle rebuilds the bundle from the manifests in the output directory.
// A unit whose script changed since it was generated fails the bundle.
func (b *Builder) Bundle() (*bundle.Artifact, *stjserr.Report) {
	start := time.Now()
	report := &stjserr.Report{}
	defer func() { report.Elapsed = time.Since(start) }()

	units, errs := emit.LoadAll(b.workspace.OutputDir)
	for _, err := range errs {
		report.Add(err)
	}
	if report.Failed() {
		b.log.Printf("skipping bundle %s: %d unit(s) could not be loaded", b.config.Project.Name, len(errs))
		return nil, report
	}
	b.printf("Loaded %d unit(s) from %s\n", len(units), b.workspace.OutputDir)
	a, err := b.bundle(units)
	if err != nil {
		report.Add(err)
		return nil, report
	}
	return a, report
}

func (b *Builder) bundle(units []*emit.Unit) (*bundle.Artifact, error) {
	name := b.config.Project.Name
	rev, err := Revision(b.workspace.ProjectDir)
	if err != nil {
		b.printf("No revision for banner: %v\n", err)
	}
	a, err := bundle.Bundle(units, bundle.Options{
		Name:      name,
		Banner:    banner(name, rev),
		SourceMap: b.config.Generator.SourceMap,
	})
	if err != nil {
		return nil, fmt.Errorf("bundling %s: %w", name, err)
	}
	path, err := a.Write(b.workspace.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("writing bundle %s: %w", path, err)
	}
	b.printf("Bundled %d unit(s) into %s\n", len(a.Order), path)
	return a, nil
}

// unit transpiles one unit and writes its outputs.
func (b *Builder) unit(tr transpiler.Transpiler, u *ast.CompilationUnit) (*emit.Unit, error) {
	out, err := tr.Transpile(u)
	if err != nil {
		return nil, err
	}
	if out.Map != nil {
		if err := b.linkSources(u, out); err != nil {
			return nil, ioFailure(u, err)
		}
	}
	if _, err := emit.Write(b.workspace.OutputDir, out); err != nil {
		return nil, ioFailure(u, err)
	}
	return out, nil
}

// linkSources points the unit's map at its source file, copying the
// source next to the script when configured.
func (b *Builder) linkSources(u *ast.CompilationUnit, out *emit.Unit) error {
	copied := b.config.Generator.CopySources && u.File != ""
	if copied {
		data, err := os.ReadFile(b.workspace.SourcePath(u.File))
		if err != nil {
			return fmt.Errorf("copying source: %w", err)
		}
		text, err := decodeSource(data, b.config.Project.Encoding)
		if err != nil {
			return fmt.Errorf("copying source %s: %w", u.File, err)
		}
		if err := emit.WriteFile(b.workspace.SourceCopyPath(out.ID, u.File), text); err != nil {
			return err
		}
	}
	for i, s := range out.Map.Sources {
		out.Map.Sources[i] = b.workspace.mapSource(out.ID, s, copied)
	}
	return nil
}

// declare registers all units in env and marks the units whose
// declaration conflicts.
func (b *Builder) declare(env *types.Environment, units []*ast.CompilationUnit, failed []error) {
	var present []*ast.CompilationUnit
	byFile := make(map[string]int)
	byName := make(map[string]bool)
	for i, u := range units {
		if u == nil || failed[i] != nil {
			continue
		}
		name := u.QualifiedName()
		if byName[name] {
			failed[i] = &stjserr.UnitFailure{Unit: name, Errors: []error{
				stjserr.NewResolutionError(u.Type.Pos(), "duplicate declaration of '%s'", name),
			}}
			continue
		}
		byName[name] = true
		present = append(present, u)
		if _, seen := byFile[u.File]; !seen {
			byFile[u.File] = i
		}
	}
	conflicts := make(map[int][]error)
	for _, err := range resolve.Declare(env, present...) {
		pos, _ := err.(stjserr.Positioned)
		if pos == nil {
			b.log.Printf("declaring units: %v", err)
			continue
		}
		i, ok := byFile[pos.Position().File]
		if !ok {
			b.log.Printf("declaring units: %v", err)
			continue
		}
		conflicts[i] = append(conflicts[i], err)
	}
	for i, errs := range conflicts {
		failed[i] = &stjserr.UnitFailure{Unit: units[i].QualifiedName(), Errors: errs}
	}
}

// allowedPackages extends the configured packages with the packages of
// the units being compiled.
func allowedPackages(configured []string, units []*ast.CompilationUnit) []string {
	out := append([]string(nil), configured...)
	seen := make(map[string]bool, len(out))
	for _, p := range out {
		seen[p] = true
	}
	for _, u := range units {
		if u == nil || u.Package == "" || seen[u.Package] {
			continue
		}
		seen[u.Package] = true
		out = append(out, u.Package)
	}
	return out
}

func ioFailure(u *ast.CompilationUnit, err error) error {
	pos := u.Pos()
	if !pos.IsValid() {
		pos = source.Position{File: u.File}
	}
	return &stjserr.UnitFailure{Unit: u.QualifiedName(), Errors: []error{stjserr.NewIOError(pos, err)}}
}
