package bundle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound indicates no file in the bundle matches the requested name or prefix.
var ErrNotFound = errors.New("file not found in bundle")

// Bundle gives read access to the files of a firmware package. Names are
// base names; directory structure inside the package is ignored.
type Bundle interface {
	// LookupByName returns the contents of the file with the exact base name.
	LookupByName(name string) ([]byte, error)

	// LookupByPrefix returns the contents of the first file, in name order,
	// whose base name starts with prefix.
	LookupByPrefix(prefix string) ([]byte, error)
}

// Files is an in-memory Bundle keyed by base name.
type Files map[string][]byte

// LookupByName implements Bundle.
func (f Files) LookupByName(name string) ([]byte, error) {
	data, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, nil
}

// LookupByPrefix implements Bundle.
func (f Files) LookupByPrefix(prefix string) ([]byte, error) {
	name, ok := firstWithPrefix(f.names(), prefix)
	if !ok {
		return nil, fmt.Errorf("%w: %s*", ErrNotFound, prefix)
	}
	return f[name], nil
}

// Names returns the file names in sorted order.
func (f Files) Names() []string {
	return f.names()
}

func (f Files) names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// firstWithPrefix returns the first of the sorted names starting with prefix.
func firstWithPrefix(sorted []string, prefix string) (string, bool) {
	for _, name := range sorted {
		if strings.HasPrefix(name, prefix) {
			return name, true
		}
	}
	return "", false
}
