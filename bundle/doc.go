// Package bundle provides read access to firmware packages.
//
// A package holds a rawprogram manifest, an optional prog_ flash programmer
// and the images the manifest refers to. It may be shipped as a directory or
// as a ZIP archive; both are addressed by base name.
package bundle
