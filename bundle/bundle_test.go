package bundle

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var testFiles = map[string]string{
	"rawprogram_nand_p4K_b256K_update.xml":  "<data/>",
	"rawprogram_nand_p4K_b256K_factory.xml": "<factory/>",
	"prog_nand_firehose_9x07.mbn":           "programmer",
	"sbl1.mbn":                              "sbl",
}

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func buildDir(t *testing.T, entries map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range entries {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "rawprogram_subdir"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestBundles(t *testing.T) {
	files := Files{}
	for name, content := range testFiles {
		files[name] = []byte(content)
	}

	zipped := map[string]string{}
	for name, content := range testFiles {
		zipped["update/firehose/"+name] = content
	}
	z, err := OpenZip(buildZip(t, zipped))
	if err != nil {
		t.Fatalf("OpenZip: %v", err)
	}

	d, err := OpenDir(buildDir(t, testFiles))
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}

	bundles := map[string]Bundle{
		"files": files,
		"zip":   z,
		"dir":   d,
	}

	for name, b := range bundles {
		t.Run(name, func(t *testing.T) {
			data, err := b.LookupByName("sbl1.mbn")
			if err != nil || string(data) != "sbl" {
				t.Errorf("LookupByName(sbl1.mbn) = %q, %v", data, err)
			}

			data, err = b.LookupByPrefix("prog_")
			if err != nil || string(data) != "programmer" {
				t.Errorf("LookupByPrefix(prog_) = %q, %v", data, err)
			}

			// factory sorts before update
			data, err = b.LookupByPrefix("rawprogram_")
			if err != nil || string(data) != "<factory/>" {
				t.Errorf("LookupByPrefix(rawprogram_) = %q, %v", data, err)
			}

			if _, err := b.LookupByName("missing.bin"); !errors.Is(err, ErrNotFound) {
				t.Errorf("LookupByName(missing) error = %v, want ErrNotFound", err)
			}
			if _, err := b.LookupByPrefix("patch_"); !errors.Is(err, ErrNotFound) {
				t.Errorf("LookupByPrefix(patch_) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestZipBaseNames(t *testing.T) {
	z, err := OpenZip(buildZip(t, map[string]string{
		`a\b\boot.img`: "boot",
		"dir/":         "",
	}))
	if err != nil {
		t.Fatalf("OpenZip: %v", err)
	}

	if names := z.Names(); len(names) != 1 || names[0] != "boot.img" {
		t.Errorf("Names() = %v, want [boot.img]", names)
	}
}

func TestOpenZipInvalid(t *testing.T) {
	if _, err := OpenZip([]byte("not a zip")); err == nil {
		t.Error("expected error for invalid archive")
	}
}

func TestOpen(t *testing.T) {
	dir := buildDir(t, testFiles)
	b, err := Open(dir)
	if err != nil {
		t.Fatalf("Open(dir): %v", err)
	}
	if _, ok := b.(*Dir); !ok {
		t.Errorf("Open(dir) = %T, want *Dir", b)
	}

	archive := filepath.Join(t.TempDir(), "fw.zip")
	if err := os.WriteFile(archive, buildZip(t, testFiles), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err = Open(archive)
	if err != nil {
		t.Fatalf("Open(zip): %v", err)
	}
	if _, ok := b.(*Zip); !ok {
		t.Errorf("Open(zip) = %T, want *Zip", b)
	}

	if _, err := Open(filepath.Join(dir, "nope")); err == nil {
		t.Error("expected error for missing path")
	}
}
