package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Attribute names read from erase and program elements.
const (
	AttrPagesPerBlock           = "PAGES_PER_BLOCK"
	AttrSectorSize              = "SECTOR_SIZE_IN_BYTES"
	AttrNumPartitionSectors     = "num_partition_sectors"
	AttrPhysicalPartitionNumber = "physical_partition_number"
	AttrStartSector             = "start_sector"
	AttrLastSector              = "last_sector"
	AttrLabel                   = "label"
	AttrFilename                = "filename"
)

// FilePrefix is the name prefix of manifest files inside a firmware bundle.
const FilePrefix = "rawprogram_"

// Parse parses a rawprogram manifest from the given file path.
//
// Example:
//
//	m, err := manifest.Parse("rawprogram_nand_p4K_b256K.xml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d erases, %d programs\n", len(m.Erases()), len(m.Programs()))
func Parse(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseBytes parses a manifest held in memory.
func ParseBytes(data []byte) (*Manifest, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses a manifest from any io.Reader. The root element must be
// <data>; its erase and program children become directives in source order
// and every other child is ignored.
func ParseReader(r io.Reader) (*Manifest, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("malformed XML: %v", err)}
	}

	root := doc.Root()
	if root == nil {
		return nil, &ConfigurationError{Reason: "no root element"}
	}
	if root.Tag != "data" {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("root element is <%s>, expected <data>", root.Tag)}
	}

	m := &Manifest{}
	counts := map[Op]int{}
	for _, el := range root.ChildElements() {
		op := Op(el.Tag)
		if op != OpErase && op != OpProgram {
			continue
		}

		d, err := parseDirective(el, op, counts[op])
		if err != nil {
			return nil, err
		}
		counts[op]++
		m.Directives = append(m.Directives, d)
	}

	return m, nil
}

func parseDirective(el *etree.Element, op Op, index int) (Directive, error) {
	d := Directive{
		Op:    op,
		Index: index,
		Attrs: make(map[string]string, len(el.Attr)),
	}
	for _, a := range el.Attr {
		d.Attrs[a.Key] = a.Value
	}

	required := func(attr string) (uint64, error) {
		v, ok := d.Attrs[attr]
		if !ok {
			return 0, &ConfigurationError{Element: string(op), Index: index, Attr: attr, Reason: "is missing"}
		}
		return parseNumber(op, index, attr, v)
	}

	var err error
	if d.PagesPerBlock, err = required(AttrPagesPerBlock); err != nil {
		return d, err
	}
	if d.SectorSizeBytes, err = required(AttrSectorSize); err != nil {
		return d, err
	}
	if d.SectorSizeBytes == 0 {
		return d, &ConfigurationError{Element: string(op), Index: index, Attr: AttrSectorSize,
			Value: d.Attrs[AttrSectorSize], Reason: "must be greater than zero"}
	}
	if d.PhysicalPartitionNumber, err = required(AttrPhysicalPartitionNumber); err != nil {
		return d, err
	}
	if d.StartSector, err = required(AttrStartSector); err != nil {
		return d, err
	}

	if v, ok := d.Attrs[AttrNumPartitionSectors]; ok {
		if d.NumPartitionSectors, err = parseNumber(op, index, AttrNumPartitionSectors, v); err != nil {
			return d, err
		}
	} else if op == OpErase {
		return d, &ConfigurationError{Element: string(op), Index: index, Attr: AttrNumPartitionSectors, Reason: "is missing"}
	}

	if v, ok := d.Attrs[AttrLastSector]; ok {
		last, err := parseNumber(op, index, AttrLastSector, v)
		if err != nil {
			return d, err
		}
		d.LastSector = &last
	}

	d.Label = d.Attrs[AttrLabel]
	d.Filename = baseName(d.Attrs[AttrFilename])

	return d, nil
}

// parseNumber accepts decimal, 0x-prefixed hex and 0-prefixed octal.
func parseNumber(op Op, index int, attr, value string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 0, 64)
	if err != nil {
		return 0, &ConfigurationError{Element: string(op), Index: index, Attr: attr, Value: value, Reason: "is not a number"}
	}
	return n, nil
}

// baseName trims whitespace and drops any Windows or POSIX directory part.
func baseName(filename string) string {
	filename = strings.TrimSpace(filename)
	if i := strings.LastIndexAny(filename, `\/`); i >= 0 {
		filename = filename[i+1:]
	}
	return filename
}
