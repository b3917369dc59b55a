// Package manifest parses Firehose rawprogram manifests.
//
// A manifest is an XML document whose <data> root lists erase and program
// directives:
//
//	<?xml version="1.0" ?>
//	<data>
//	  <erase PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="4096" num_partition_sectors="256"
//	         physical_partition_number="0" start_sector="0" />
//	  <program PAGES_PER_BLOCK="64" SECTOR_SIZE_IN_BYTES="4096" filename="sbl1.mbn"
//	           label="sbl" num_partition_sectors="256" physical_partition_number="0"
//	           start_sector="0" />
//	</data>
//
// Sector geometry is derived from the manifest and the size of the file to
// program. When last_sector is absent, an erase ends at start + count - 1
// while a program ends at start + count.
package manifest
