package render

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/igolaizola/choirmix/pkg/tool/tooltest"
	"github.com/klauspost/compress/zip"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func score(t *testing.T, dir string) string {
	t.Helper()
	b, err := os.ReadFile("../../score/testdata/choir.mscx")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "Bobby.mscz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	dst, err := w.Create("choir.mscx")
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
	return path
}

func midiFile(t *testing.T) string {
	t.Helper()
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 72, 100))
	tr.Add(960, midi.NoteOff(0, 72))
	tr.Close(0)
	s := smf.New()
	if err := s.Add(tr); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "fixture.mid")
	if err := s.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	return path
}

type tools struct {
	mscore   string
	timidity string
	lame     string
}

func fakeTools(t *testing.T, lameBody string) tools {
	t.Helper()
	return tools{
		mscore: tooltest.Script(t, "mscore", `[ "$1" = "--version" ] && { echo "MuseScore3 3.6.2"; exit 0; }
cp "`+midiFile(t)+`" "$3"`),
		timidity: tooltest.Script(t, "timidity", `[ "$1" = "--version" ] && { echo "TiMidity++ version 2.14.0"; exit 0; }
while [ $# -gt 0 ]; do
  [ "$1" = "-o" ] && printf '%0100d' 0 > "$2"
  shift
done`),
		lame: tooltest.Script(t, "lame", `[ "$1" = "--version" ] && { echo "LAME 64bits version 3.100"; exit 0; }
`+lameBody),
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	source := score(t, dir)
	fake := fakeTools(t, "exit 0")
	broken := tooltest.Script(t, "mscore", "exit 1")

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no input", Config{}, "input is required"},
		{"no scores", Config{Input: filepath.Join(dir, "*.mp3")}, "no scores found"},
		{"encoder", Config{Input: source, Encoder: "vorbis", MscoreBin: fake.mscore}, "unknown encoder"},
		{"version", Config{Input: source, MscoreBin: broken}, "couldn't get mscore version"},
		{"policy", Config{
			Input:       source,
			MscoreBin:   fake.mscore,
			TimidityBin: fake.timidity,
			LameBin:     fake.lame,
			Policies:    "solo,karaoke",
		}, "unknown policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := Run(context.Background(), &cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Run() err = %v; want %q", err, tt.want)
			}
		})
	}
}

func TestRunTrackFailures(t *testing.T) {
	source := score(t, t.TempDir())
	out := t.TempDir()
	// The encoder exits cleanly but writes an invalid mp3
	fake := fakeTools(t, `for last; do :; done; echo garbage > "$last"`)

	err := Run(context.Background(), &Config{
		Input:       source,
		Output:      out,
		MscoreBin:   fake.mscore,
		TimidityBin: fake.timidity,
		LameBin:     fake.lame,
	})
	if err == nil || !strings.Contains(err.Error(), "3 of 3 tracks failed") {
		t.Fatalf("Run() err = %v; want 3 of 3 tracks failed", err)
	}

	// Invalid outputs are removed
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("output has %d entries; want 0", len(entries))
	}

	// One version check plus master, solo and dominant conversions
	calls := strings.Split(strings.TrimSpace(tooltest.ReadArgs(t, fake.mscore)), "\n")
	if len(calls) != 4 {
		t.Fatalf("mscore calls = %q; want 4 calls", calls)
	}
	if !strings.HasPrefix(calls[1], source+" -o ") {
		t.Errorf("master conversion = %q; want source %q", calls[1], source)
	}
	lame := tooltest.ReadArgs(t, fake.lame)
	for _, title := range []string{"Bobby Shaftoe", "Soprano (Solo) - Bobby Shaftoe", "Soprano (Dominant) - Bobby Shaftoe"} {
		if !strings.Contains(lame, "--tt "+title+" ") {
			t.Errorf("lame args = %q; want title %q", lame, title)
		}
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
	fake := fakeTools(t, `for last; do :; done; echo garbage > "$last"`)

	err := Run(context.Background(), &Config{
		Input:       dir,
		Output:      t.TempDir(),
		MscoreBin:   fake.mscore,
		TimidityBin: fake.timidity,
		LameBin:     fake.lame,
	})
	if err == nil {
		t.Fatalf("Run() err = nil; want error")
	}
	for _, want := range []string{"couldn't load", "Amazing.mscz", "3 of 3 tracks failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Run() err = %v; want %q", err, want)
		}
	}

	// The valid score is still converted after the broken one
	calls := strings.Split(strings.TrimSpace(tooltest.ReadArgs(t, fake.mscore)), "\n")
	if len(calls) != 4 {
		t.Fatalf("mscore calls = %q; want 4 calls", calls)
	}
	if !strings.HasPrefix(calls[1], source+" -o ") {
		t.Errorf("master conversion = %q; want source %q", calls[1], source)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"solo", []string{"solo"}},
		{" solo, dominant ,", []string{"solo", "dominant"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
