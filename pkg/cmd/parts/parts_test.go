package parts

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

func score(t *testing.T, dir string) string {
	t.Helper()
	b, err := os.ReadFile("../../score/testdata/choir.mscx")
	if err != nil {
		t.Fatal(err)
	}
	source := filepath.Join(dir, "Bobby.mscz")
	f, err := os.Create(source)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	dst, err := w.Create("Bobby.mscx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dst.Write(b); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return source
}

func TestPrint(t *testing.T) {
	source := score(t, t.TempDir())

	var buf bytes.Buffer
	if err := Print(&buf, source); err != nil {
		t.Fatalf("Print() err = %v; want nil", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Print() = %q; want 4 lines", buf.String())
	}
	if want := source + ": Bobby Shaftoe"; lines[0] != want {
		t.Errorf("header = %q; want %q", lines[0], want)
	}
	tests := []struct {
		line int
		want []string
	}{
		{1, []string{"0", "Piano", "instrument", "muted=false", "volume=90", "pan=0.00"}},
		{2, []string{"1", "Soprano", "vocal", "solo=false", "volume=100"}},
		{3, []string{"2", "Alto", "vocal (empty)", "solo=true", "pan=-0.54"}},
	}
	for _, tt := range tests {
		for _, want := range tt.want {
			if !strings.Contains(lines[tt.line], want) {
				t.Errorf("line %d = %q; want %q", tt.line, lines[tt.line], want)
			}
		}
	}
	if strings.Contains(lines[2], "empty") {
		t.Errorf("line 2 = %q; soprano has notes", lines[2])
	}

	if err := Print(&buf, filepath.Join(t.TempDir(), "missing.mscz")); err == nil {
		t.Errorf("Print(missing) err = nil; want error")
	}
}

func TestRunContinues(t *testing.T) {
	dir := t.TempDir()
	source := score(t, dir)
	// Sorted before the valid score
	broken := filepath.Join(dir, "Amazing.mscz")
	if err := os.WriteFile(broken, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	err := run(context.Background(), &buf, &Config{Input: dir})
	if err == nil {
		t.Fatalf("run() err = nil; want error")
	}
	if !strings.Contains(err.Error(), "Amazing.mscz") {
		t.Errorf("run() err = %v; want %q", err, "Amazing.mscz")
	}
	if want := source + ": Bobby Shaftoe"; !strings.Contains(buf.String(), want) {
		t.Errorf("run() output = %q; want %q", buf.String(), want)
	}
}
