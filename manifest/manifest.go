package manifest

import (
	"fmt"
	"strconv"
)

// Op is the flash operation of a directive.
type Op string

const (
	// OpErase erases a sector range
	OpErase Op = "erase"

	// OpProgram writes a file to a sector range
	OpProgram Op = "program"
)

// Manifest is a parsed rawprogram file.
type Manifest struct {
	// Directives holds every erase and program element in source order
	Directives []Directive
}

// Directive is one erase or program element of the manifest.
type Directive struct {
	// Op is the operation
	Op Op

	// Index is the position of the directive among directives of the same Op
	Index int

	// PagesPerBlock is the flash pages per erase block
	PagesPerBlock uint64

	// SectorSizeBytes is the sector size, never zero
	SectorSizeBytes uint64

	// StartSector is the first sector of the range
	StartSector uint64

	// LastSector is the explicit last sector, nil when the manifest omits it
	LastSector *uint64

	// NumPartitionSectors is the sector count from the manifest (0 when absent)
	NumPartitionSectors uint64

	// PhysicalPartitionNumber selects the physical partition
	PhysicalPartitionNumber uint64

	// Label is the partition label (optional)
	Label string

	// Filename is the base name of the image to program, empty when there is none
	Filename string

	// Attrs holds the element's attributes exactly as written in the manifest
	Attrs map[string]string
}

// Erases returns the erase directives in source order.
func (m *Manifest) Erases() []Directive {
	return m.filter(OpErase)
}

// Programs returns the program directives in source order.
func (m *Manifest) Programs() []Directive {
	return m.filter(OpProgram)
}

func (m *Manifest) filter(op Op) []Directive {
	var out []Directive
	for _, d := range m.Directives {
		if d.Op == op {
			out = append(out, d)
		}
	}
	return out
}

// Text returns the attribute as written in the manifest, or the decimal form
// of fallback when the attribute is absent.
func (d Directive) Text(attr string, fallback uint64) string {
	if v, ok := d.Attrs[attr]; ok {
		return v
	}
	return strconv.FormatUint(fallback, 10)
}

// EraseLastSector returns the last sector of an erase. When the manifest has
// no last_sector it is start + count - 1. A zero count erases only the start sector.
func (d Directive) EraseLastSector() uint64 {
	if d.LastSector != nil {
		return *d.LastSector
	}
	if d.NumPartitionSectors == 0 {
		return d.StartSector
	}
	return d.StartSector + d.NumPartitionSectors - 1
}

// ProgramSectorCount returns the number of sectors a program writes. A
// non-empty file is rounded up to whole sectors; otherwise the manifest count
// is used.
func (d Directive) ProgramSectorCount(fileSize int64) uint64 {
	if fileSize <= 0 {
		return d.NumPartitionSectors
	}
	size := uint64(fileSize)
	n := size / d.SectorSizeBytes
	if size%d.SectorSizeBytes != 0 {
		n++
	}
	return n
}

// ProgramLastSector returns the last_sector sent with a program. Unlike erase,
// the derived value is start + count.
func (d Directive) ProgramLastSector(fileSize int64) uint64 {
	if d.LastSector != nil {
		return *d.LastSector
	}
	return d.StartSector + d.ProgramSectorCount(fileSize)
}

// ProgramByteCount returns the number of bytes streamed after a program
// command: the sector count times the sector size.
func (d Directive) ProgramByteCount(fileSize int64) int64 {
	return int64(d.ProgramSectorCount(fileSize) * d.SectorSizeBytes)
}

// Name returns a short description used in logs and errors.
func (d Directive) Name() string {
	if d.Label != "" {
		return fmt.Sprintf("%s #%d (%s)", d.Op, d.Index, d.Label)
	}
	return fmt.Sprintf("%s #%d", d.Op, d.Index)
}
