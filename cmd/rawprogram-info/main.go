// rawprogram-info prints what a firmware bundle would do to a device without
// touching one: the manifest directives, the files they reference and the
// Firehose commands that would be sent.
//
// Usage:
//
//	rawprogram-info --logtostderr --firmware=/path/to/firmware.zip
//	rawprogram-info --logtostderr --firmware=rawprogram_nand.xml --commands
package main

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"github.com/moffa90/go-firehose/bundle"
	"github.com/moffa90/go-firehose/firehose"
	"github.com/moffa90/go-firehose/flasher"
	"github.com/moffa90/go-firehose/manifest"
)

var (
	firmware = flag.String("firmware", "", "Firmware bundle (directory or zip) or a rawprogram XML file")
	commands = flag.Bool("commands", false, "Print the Firehose command for every directive")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if len(*firmware) == 0 {
		glog.Exit("Missing --firmware argument")
	}

	var (
		m   *manifest.Manifest
		b   bundle.Bundle
		err error
	)
	if strings.EqualFold(filepath.Ext(*firmware), ".xml") {
		m, err = manifest.Parse(*firmware)
	} else {
		b, err = bundle.Open(*firmware)
		if err == nil {
			m, err = loadManifest(b)
		}
	}
	if err != nil {
		glog.Exitf("Failed to load manifest: %v", err)
	}

	fmt.Printf("Manifest: %d erase, %d program\n", len(m.Erases()), len(m.Programs()))
	if b != nil {
		if prog, err := b.LookupByPrefix(flasher.ProgrammerPrefix); err == nil {
			fmt.Printf("Programmer: %d bytes\n", len(prog))
		} else {
			fmt.Println("Programmer: none (device must already run one)")
		}
	}
	fmt.Println()

	var totalBytes int64
	for _, d := range m.Directives {
		switch d.Op {
		case manifest.OpErase:
			fmt.Printf("erase   #%-3d partition %d  sectors %d..%d  (%d x %d bytes)\n",
				d.Index, d.PhysicalPartitionNumber, d.StartSector, d.EraseLastSector(),
				d.NumPartitionSectors, d.SectorSizeBytes)
			if *commands {
				fmt.Printf("        %s\n", firehose.BuildErase(d))
			}

		case manifest.OpProgram:
			if d.Filename == "" {
				fmt.Printf("program #%-3d %-16s skipped (no filename)\n", d.Index, d.Label)
				continue
			}

			size := int64(-1)
			if b != nil {
				data, err := b.LookupByName(d.Filename)
				switch {
				case err == nil:
					size = int64(len(data))
				case errors.Is(err, bundle.ErrNotFound):
					glog.Warningf("program #%d: %s is not in the bundle", d.Index, d.Filename)
				default:
					glog.Exitf("Failed to read %s: %v", d.Filename, err)
				}
			}

			if size < 0 {
				fmt.Printf("program #%-3d %-16s %s at sector %d\n", d.Index, d.Label, d.Filename, d.StartSector)
				continue
			}

			total := d.ProgramByteCount(size)
			totalBytes += total
			fmt.Printf("program #%-3d %-16s %s  %d bytes -> sectors %d..%d  (%d bytes streamed)\n",
				d.Index, d.Label, d.Filename, size, d.StartSector, d.ProgramLastSector(size), total)
			if *commands {
				fmt.Printf("        %s\n", firehose.BuildProgram(d, size))
			}
		}
	}

	if totalBytes > 0 {
		fmt.Println()
		fmt.Printf("Total streamed: %d bytes (%.2f MiB)\n", totalBytes, float64(totalBytes)/(1024*1024))
	}
}

func loadManifest(b bundle.Bundle) (*manifest.Manifest, error) {
	raw, err := b.LookupByPrefix(manifest.FilePrefix)
	if err != nil {
		return nil, fmt.Errorf("%s*.xml: %w", manifest.FilePrefix, err)
	}
	return manifest.ParseBytes(raw)
}
