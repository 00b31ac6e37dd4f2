package pipeline

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteDirToTar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "setup.py"), "from setuptools import setup\n")
	writeFile(t, filepath.Join(dir, "src", "pkg", "__init__.py"), "")
	if err := os.Symlink("setup.py", filepath.Join(dir, "link.py")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := writeDirToTar(tw, dir, "ragbuilder"); err != nil {
		t.Fatalf("writeDirToTar: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	entries := readTar(t, &buf)

	want := []string{
		"ragbuilder/",
		"ragbuilder/link.py",
		"ragbuilder/setup.py",
		"ragbuilder/src/",
		"ragbuilder/src/pkg/",
		"ragbuilder/src/pkg/__init__.py",
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %v, want %v", names(entries), want)
	}
	for i, h := range entries {
		if h.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, h.Name, want[i])
		}
		if h.Uid != 0 || h.Gid != 0 || h.Uname != "" || h.Gname != "" {
			t.Errorf("entry %q owned by %d:%d (%s:%s), want root", h.Name, h.Uid, h.Gid, h.Uname, h.Gname)
		}
	}

	if entries[1].Typeflag != tar.TypeSymlink || entries[1].Linkname != "setup.py" {
		t.Errorf("link.py = type %c -> %q, want symlink to setup.py", entries[1].Typeflag, entries[1].Linkname)
	}
}

func TestWriteDirToTarDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "a.txt"), "a")

	archive := func() []byte {
		var buf bytes.Buffer
		tw := tar.NewWriter(&buf)
		if err := writeDirToTar(tw, dir, "src"); err != nil {
			t.Fatal(err)
		}
		tw.Close()
		return buf.Bytes()
	}

	if !bytes.Equal(archive(), archive()) {
		t.Fatal("archives of the same tree differ")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readTar(t *testing.T, r io.Reader) []*tar.Header {
	t.Helper()
	var headers []*tar.Header
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return headers
		}
		if err != nil {
			t.Fatal(err)
		}
		headers = append(headers, h)
	}
}

func names(headers []*tar.Header) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = h.Name
	}
	return out
}
