package emit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"martianoff/stjs/internal/sourcemap"
)

// Current schema version - increment when Manifest format changes
const manifestSchemaVersion uint16 = 1

// Manifest describes a written unit so a bundle can be rebuilt without
// generating again.
type Manifest struct {
	Schema       uint16   `msgpack:"schema"`
	ID           string   `msgpack:"id"`
	Source       string   `msgpack:"source"`
	Dependencies []string `msgpack:"deps"`
	Hash         string   `msgpack:"hash"`
	HasMap       bool     `msgpack:"map"`
}

// ManifestOf builds the manifest of u.
func ManifestOf(u *Unit) *Manifest {
	return &Manifest{
		Schema:       manifestSchemaVersion,
		ID:           u.ID,
		Source:       u.Source,
		Dependencies: u.Dependencies,
		Hash:         Hash([]byte(u.Text)),
		HasMap:       u.Map != nil,
	}
}

// Write stores u below root: the JavaScript text, its source map when
// present, and the manifest last. Each file is replaced atomically.
func Write(root string, u *Unit) (Paths, error) {
	p := PathsFor(root, u.ID)
	if err := WriteFile(p.JS, []byte(u.Text)); err != nil {
		return p, err
	}
	if u.Map != nil {
		data, err := u.Map.Encode()
		if err != nil {
			return p, fmt.Errorf("encoding source map of %s: %w", u.ID, err)
		}
		if err := WriteFile(p.Map, data); err != nil {
			return p, err
		}
	}
	return p, writeManifest(p.Manifest, ManifestOf(u))
}

func writeManifest(path string, m *Manifest) error {
	return writeAtomic(path, func(f *os.File) error {
		return msgpack.NewEncoder(f).Encode(m)
	})
}

// ReadManifest decodes the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m Manifest
	if err := msgpack.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	if m.Schema != manifestSchemaVersion {
		return nil, fmt.Errorf("manifest %s has schema %d, want %d", path, m.Schema, manifestSchemaVersion)
	}
	return &m, nil
}

// Load reads unit id back from root. A unit whose text changed since the
// manifest was written fails with a *StaleError.
func Load(root, id string) (*Unit, error) {
	return load(PathsFor(root, id))
}

func load(p Paths) (*Unit, error) {
	m, err := ReadManifest(p.Manifest)
	if err != nil {
		return nil, err
	}
	text, err := os.ReadFile(p.JS)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.JS, err)
	}
	if actual := Hash(text); actual != m.Hash {
		return nil, &StaleError{Unit: m.ID, Path: p.JS, Expected: m.Hash, Actual: actual}
	}
	u := &Unit{ID: m.ID, Source: m.Source, Text: string(text), Dependencies: m.Dependencies}
	if m.HasMap {
		data, err := os.ReadFile(p.Map)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p.Map, err)
		}
		if u.Map, err = sourcemap.Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Map, err)
		}
	}
	return u, nil
}

// LoadAll reads every unit with a manifest below root, in lexical path
// order. Units that cannot be loaded are skipped and their errors returned.
func LoadAll(root string) ([]*Unit, []error) {
	var units []*Unit
	var errs []error
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ExtManifest {
			return nil
		}
		stem := path[:len(path)-len(ExtManifest)]
		u, err := load(Paths{JS: stem + ExtJS, Map: stem + ExtMap, Manifest: path})
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		units = append(units, u)
		return nil
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("scanning %s: %w", root, err))
	}
	return units, errs
}

// WriteFile replaces path with data atomically: the data goes to a temp
// file in the same directory which is then renamed over path.
func WriteFile(path string, data []byte) error {
	return writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

func writeAtomic(path string, fill func(*os.File) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				err = errors.Join(err, rmErr)
			}
		}
	}()

	if err = fill(f); err != nil {
		err = fmt.Errorf("writing %s: %w", path, err)
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing %s: %w", f.Name(), closeErr))
		}
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
