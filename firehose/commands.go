package firehose

import (
	"fmt"

	"github.com/moffa90/go-firehose/manifest"
)

// DefaultMemoryName is the storage type sent in configure.
const DefaultMemoryName = "nand"

// ConfigureParams are the values substituted into a configure command.
type ConfigureParams struct {
	// MemoryName is the storage type, "nand" when empty
	MemoryName string

	// MaxTx is the host-to-target payload size
	MaxTx int

	// MaxRx is the target-to-host payload size
	MaxRx int
}

// BuildConfigure builds the configure command.
//
// Example output:
//
//	<?xml version="1.0" ?><data><configure MemoryName="nand" MaxPayloadSizeFromTargetInBytes="4096" AlwaysValidate="0" MaxDigestTableSizeInBytes="2048" MaxPayloadSizeToTargetInBytes="8192" ZlpAwareHost="0" SkipStorageInit="0" /></data>
func BuildConfigure(p ConfigureParams) string {
	memory := p.MemoryName
	if memory == "" {
		memory = DefaultMemoryName
	}

	return fmt.Sprintf(`<?xml version="1.0" ?><data>`+
		`<configure MemoryName="%s" MaxPayloadSizeFromTargetInBytes="%d" `+
		`AlwaysValidate="0" MaxDigestTableSizeInBytes="2048" MaxPayloadSizeToTargetInBytes="%d" `+
		`ZlpAwareHost="0" SkipStorageInit="0" /></data>`,
		memory, p.MaxRx, p.MaxTx)
}

// BuildErase builds the erase command for d. Geometry attributes are echoed
// as written in the manifest; last_sector is always numeric.
func BuildErase(d manifest.Directive) string {
	return fmt.Sprintf(`<?xml version="1.0" ?><data>`+
		`<erase PAGES_PER_BLOCK="%s" SECTOR_SIZE_IN_BYTES="%s" last_sector="%d" `+
		`num_partition_sectors="%s" physical_partition_number="%s" start_sector="%s"/></data>`,
		d.Text(manifest.AttrPagesPerBlock, d.PagesPerBlock),
		d.Text(manifest.AttrSectorSize, d.SectorSizeBytes),
		d.EraseLastSector(),
		d.Text(manifest.AttrNumPartitionSectors, d.NumPartitionSectors),
		d.Text(manifest.AttrPhysicalPartitionNumber, d.PhysicalPartitionNumber),
		d.Text(manifest.AttrStartSector, d.StartSector),
	)
}

// BuildProgram builds the program command for d and a file of fileSize bytes.
// num_partition_sectors is the file size in whole sectors when fileSize > 0.
func BuildProgram(d manifest.Directive, fileSize int64) string {
	return fmt.Sprintf(`<?xml version="1.0" ?><data>`+
		`<program PAGES_PER_BLOCK="%s" SECTOR_SIZE_IN_BYTES="%s" last_sector="%d" `+
		`num_partition_sectors="%d" physical_partition_number="%s" start_sector="%s"/></data>`,
		d.Text(manifest.AttrPagesPerBlock, d.PagesPerBlock),
		d.Text(manifest.AttrSectorSize, d.SectorSizeBytes),
		d.ProgramLastSector(fileSize),
		d.ProgramSectorCount(fileSize),
		d.Text(manifest.AttrPhysicalPartitionNumber, d.PhysicalPartitionNumber),
		d.Text(manifest.AttrStartSector, d.StartSector),
	)
}

// PowerReset is the value of a power command that reboots the target.
const PowerReset = "reset"

// BuildPower builds a power command, typically with PowerReset.
func BuildPower(value string) string {
	return fmt.Sprintf(`<?xml version="1.0" ?><data><power value="%s" /></data>`, value)
}
