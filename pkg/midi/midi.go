package midi

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrNoTracks = errors.New("midi: no tracks")

// Info summarizes a standard MIDI file.
type Info struct {
	Tracks int
	Notes  int
	Names  []string
}

func (i *Info) String() string {
	return fmt.Sprintf("%d tracks, %d notes, names %q", i.Tracks, i.Notes, i.Names)
}

// Inspect reads the MIDI file at path and counts its tracks and notes.
func Inspect(path string) (*Info, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("midi: couldn't read %q: %w", path, err)
	}
	info := &Info{Tracks: len(s.Tracks)}
	if info.Tracks == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoTracks, path)
	}
	for _, track := range s.Tracks {
		for _, ev := range track {
			var name string
			if ev.Message.GetMetaTrackName(&name) {
				info.Names = append(info.Names, name)
				continue
			}
			var channel, key, velocity uint8
			if midi.Message(ev.Message).GetNoteStart(&channel, &key, &velocity) {
				info.Notes++
			}
		}
	}
	return info, nil
}
