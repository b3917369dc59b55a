package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// Zip is a Bundle backed by a ZIP archive. Entries are addressed by base
// name; when two entries share a base name the first in archive order wins.
type Zip struct {
	files map[string]*zip.File
	names []string
}

// OpenZip indexes a ZIP archive held in memory.
func OpenZip(data []byte) (*Zip, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return newZip(r.File), nil
}

// OpenZipReader indexes a ZIP archive readable through r.
func OpenZipReader(r io.ReaderAt, size int64) (*Zip, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return newZip(zr.File), nil
}

func newZip(entries []*zip.File) *Zip {
	z := &Zip{files: make(map[string]*zip.File, len(entries))}
	for _, f := range entries {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(strings.ReplaceAll(f.Name, `\`, "/"))
		if _, seen := z.files[name]; seen {
			continue
		}
		z.files[name] = f
		z.names = append(z.names, name)
	}
	sort.Strings(z.names)
	return z
}

// Names returns the base names of the archive entries in sorted order.
func (z *Zip) Names() []string {
	return append([]string(nil), z.names...)
}

// LookupByName implements Bundle.
func (z *Zip) LookupByName(name string) ([]byte, error) {
	f, ok := z.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return readEntry(f)
}

// LookupByPrefix implements Bundle.
func (z *Zip) LookupByPrefix(prefix string) ([]byte, error) {
	name, ok := firstWithPrefix(z.names, prefix)
	if !ok {
		return nil, fmt.Errorf("%w: %s*", ErrNotFound, prefix)
	}
	return readEntry(z.files[name])
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", f.Name, err)
	}
	return data, nil
}
