package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Dir is a Bundle backed by the regular files of one directory.
type Dir struct {
	path  string
	names []string
}

// OpenDir indexes the regular files of path. Subdirectories are not searched.
func OpenDir(path string) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle directory: %w", err)
	}

	d := &Dir{path: path}
	for _, e := range entries {
		if e.Type().IsRegular() {
			d.names = append(d.names, e.Name())
		}
	}
	sort.Strings(d.names)
	return d, nil
}

// Names returns the file names in sorted order.
func (d *Dir) Names() []string {
	return append([]string(nil), d.names...)
}

// LookupByName implements Bundle.
func (d *Dir) LookupByName(name string) ([]byte, error) {
	for _, n := range d.names {
		if n == name {
			return d.read(n)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// LookupByPrefix implements Bundle.
func (d *Dir) LookupByPrefix(prefix string) ([]byte, error) {
	name, ok := firstWithPrefix(d.names, prefix)
	if !ok {
		return nil, fmt.Errorf("%w: %s*", ErrNotFound, prefix)
	}
	return d.read(name)
}

func (d *Dir) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.path, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
