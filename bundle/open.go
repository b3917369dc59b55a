package bundle

import (
	"fmt"
	"os"
)

// Open returns a Dir for a directory path and a Zip for any other file.
//
// Example:
//
//	b, err := bundle.Open("EC25EFAR06A06M4G.zip")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	manifest, err := b.LookupByPrefix("rawprogram_")
func Open(path string) (Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	if info.IsDir() {
		return OpenDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	return OpenZip(data)
}
