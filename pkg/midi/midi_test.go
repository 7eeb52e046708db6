package midi

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func write(t *testing.T, tracks map[string][]uint8) string {
	t.Helper()
	s := smf.New()
	for _, name := range []string{"Piano", "Soprano", "Alto"} {
		keys, ok := tracks[name]
		if !ok {
			continue
		}
		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(name))
		for _, key := range keys {
			tr.Add(0, midi.NoteOn(0, key, 100))
			tr.Add(480, midi.NoteOff(0, key))
		}
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "score.mid")
	if err := s.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspect(t *testing.T) {
	path := write(t, map[string][]uint8{
		"Piano":   {60, 64, 67},
		"Soprano": {72},
		"Alto":    nil,
	})
	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() err = %v; want nil", err)
	}
	if info.Tracks != 3 {
		t.Errorf("Tracks = %d; want 3", info.Tracks)
	}
	if info.Notes != 4 {
		t.Errorf("Notes = %d; want 4", info.Notes)
	}
	if want := []string{"Piano", "Soprano", "Alto"}; !reflect.DeepEqual(info.Names, want) {
		t.Errorf("Names = %q; want %q", info.Names, want)
	}
}

func TestInspectInvalid(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.mid")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect(empty); err == nil {
		t.Errorf("Inspect(empty) err = nil; want error")
	}
	if _, err := Inspect(filepath.Join(dir, "missing.mid")); err == nil {
		t.Errorf("Inspect(missing) err = nil; want error")
	}
}
