package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifest = `<?xml version="1.0" ?>
<data>
  <!-- NAND layout -->
  <erase PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="512" num_partition_sectors="100" physical_partition_number="0" start_sector="0" />
  <program PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="512" filename="images\sbl1.mbn" label="sbl" num_partition_sectors="256" physical_partition_number="0" start_sector="0x10" />
  <patch start_sector="1" />
  <erase PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="4096" last_sector="300" num_partition_sectors="200" physical_partition_number="1" start_sector="100" />
  <program PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="512" filename="" label="empty" num_partition_sectors="8" physical_partition_number="0" start_sector="512" />
</data>`

func TestParseReader(t *testing.T) {
	m, err := ParseReader(strings.NewReader(sampleManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.Directives) != 4 {
		t.Fatalf("directives = %d, want 4", len(m.Directives))
	}

	erases := m.Erases()
	programs := m.Programs()
	if len(erases) != 2 || len(programs) != 2 {
		t.Fatalf("erases/programs = %d/%d, want 2/2", len(erases), len(programs))
	}

	e := erases[0]
	if e.Index != 0 || e.StartSector != 0 || e.NumPartitionSectors != 100 || e.SectorSizeBytes != 512 {
		t.Errorf("first erase = %+v", e)
	}
	if e.LastSector != nil {
		t.Errorf("first erase LastSector = %d, want nil", *e.LastSector)
	}

	if erases[1].Index != 1 || erases[1].LastSector == nil || *erases[1].LastSector != 300 {
		t.Errorf("second erase = %+v", erases[1])
	}

	p := programs[0]
	if p.Filename != "sbl1.mbn" {
		t.Errorf("Filename = %q, want %q", p.Filename, "sbl1.mbn")
	}
	if p.Label != "sbl" {
		t.Errorf("Label = %q, want %q", p.Label, "sbl")
	}
	if p.StartSector != 16 {
		t.Errorf("StartSector = %d, want 16", p.StartSector)
	}
	if got := p.Text(AttrStartSector, p.StartSector); got != "0x10" {
		t.Errorf("Text(start_sector) = %q, want verbatim %q", got, "0x10")
	}

	if programs[1].Filename != "" {
		t.Errorf("empty filename = %q", programs[1].Filename)
	}
}

func TestParseReaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{
			name:   "malformed xml",
			input:  `<data><erase`,
			errMsg: "malformed XML",
		},
		{
			name:   "empty document",
			input:  ``,
			errMsg: "no root element",
		},
		{
			name:   "wrong root",
			input:  `<config/>`,
			errMsg: "expected <data>",
		},
		{
			name:   "missing sector size",
			input:  `<data><erase PAGES_PER_BLOCK="64" num_partition_sectors="1" physical_partition_number="0" start_sector="0"/></data>`,
			errMsg: "erase #0: SECTOR_SIZE_IN_BYTES is missing",
		},
		{
			name:   "zero sector size",
			input:  `<data><program PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="0" physical_partition_number="0" start_sector="0"/></data>`,
			errMsg: "must be greater than zero",
		},
		{
			name:   "erase without count",
			input:  `<data><erase PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="512" physical_partition_number="0" start_sector="0"/></data>`,
			errMsg: "num_partition_sectors is missing",
		},
		{
			name:   "invalid number",
			input:  `<data><program PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="512" physical_partition_number="0" start_sector="abc"/></data>`,
			errMsg: `start_sector="abc" is not a number`,
		},
		{
			name:   "invalid last sector",
			input:  `<data><erase PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="512" num_partition_sectors="1" physical_partition_number="0" start_sector="0" last_sector="-1"/></data>`,
			errMsg: "last_sector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errMsg)
			}

			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("error type = %T, want *ConfigurationError", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestProgramWithoutCountIsAccepted(t *testing.T) {
	input := `<data><program PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="512" filename="a.bin" physical_partition_number="0" start_sector="8"/></data>`

	m, err := ParseBytes([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := m.Programs()[0]
	if p.NumPartitionSectors != 0 {
		t.Errorf("NumPartitionSectors = %d, want 0", p.NumPartitionSectors)
	}
	if got := p.ProgramSectorCount(1000); got != 2 {
		t.Errorf("ProgramSectorCount(1000) = %d, want 2", got)
	}
}

func TestSectorDerivation(t *testing.T) {
	last := uint64(42)

	tests := []struct {
		name        string
		d           Directive
		fileSize    int64
		wantErase   uint64
		wantCount   uint64
		wantProgram uint64
		wantBytes   int64
	}{
		{
			name:        "derived last sector",
			d:           Directive{SectorSizeBytes: 512, StartSector: 0, NumPartitionSectors: 100},
			fileSize:    5000,
			wantErase:   99,
			wantCount:   10,
			wantProgram: 10,
			wantBytes:   5120,
		},
		{
			name:        "exact multiple",
			d:           Directive{SectorSizeBytes: 512, StartSector: 20, NumPartitionSectors: 4},
			fileSize:    2048,
			wantErase:   23,
			wantCount:   4,
			wantProgram: 24,
			wantBytes:   2048,
		},
		{
			name:        "empty file keeps manifest count",
			d:           Directive{SectorSizeBytes: 4096, StartSector: 10, NumPartitionSectors: 7},
			fileSize:    0,
			wantErase:   16,
			wantCount:   7,
			wantProgram: 17,
			wantBytes:   7 * 4096,
		},
		{
			name:        "explicit last sector",
			d:           Directive{SectorSizeBytes: 512, StartSector: 0, NumPartitionSectors: 100, LastSector: &last},
			fileSize:    1,
			wantErase:   42,
			wantCount:   1,
			wantProgram: 42,
			wantBytes:   512,
		},
		{
			name:        "zero count erase",
			d:           Directive{SectorSizeBytes: 512, StartSector: 5},
			wantErase:   5,
			wantCount:   0,
			wantProgram: 5,
			wantBytes:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.EraseLastSector(); got != tt.wantErase {
				t.Errorf("EraseLastSector() = %d, want %d", got, tt.wantErase)
			}
			if got := tt.d.ProgramSectorCount(tt.fileSize); got != tt.wantCount {
				t.Errorf("ProgramSectorCount() = %d, want %d", got, tt.wantCount)
			}
			if got := tt.d.ProgramLastSector(tt.fileSize); got != tt.wantProgram {
				t.Errorf("ProgramLastSector() = %d, want %d", got, tt.wantProgram)
			}
			if got := tt.d.ProgramByteCount(tt.fileSize); got != tt.wantBytes {
				t.Errorf("ProgramByteCount() = %d, want %d", got, tt.wantBytes)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"sbl1.mbn":                "sbl1.mbn",
		"  sbl1.mbn  ":            "sbl1.mbn",
		`C:\build\out\sbl1.mbn`:   "sbl1.mbn",
		"out/images/system.ubi":   "system.ubi",
		`mixed/dir\name\boot.img`: "boot.img",
		"":                        "",
	}
	for in, want := range tests {
		if got := baseName(in); got != want {
			t.Errorf("baseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rawprogram_nand.xml")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Directives) != 4 {
		t.Errorf("directives = %d, want 4", len(m.Directives))
	}

	if _, err := Parse(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Error("expected error for missing file")
	}
}
