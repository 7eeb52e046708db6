package pipeline

import (
	"errors"
	"fmt"

	"github.com/igolaizola/choirmix/pkg/midi"
	"github.com/igolaizola/choirmix/pkg/sound"
	"github.com/igolaizola/choirmix/pkg/tags"
	"github.com/oklog/ulid/v2"
)

// State is the last step a track reached.
type State int

const (
	Pending State = iota
	Loaded
	PartsBuilt
	PolicyApplied
	Serialized
	Rendered
)

var stateNames = map[State]string{
	Pending:       "pending",
	Loaded:        "loaded",
	PartsBuilt:    "parts built",
	PolicyApplied: "policy applied",
	Serialized:    "serialized",
	Rendered:      "rendered",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Track is one rendering of a score.
type Track struct {
	ID     ulid.ULID
	Source string
	// Part is the index of the target part, -1 for the master track.
	Part   int
	Name   string
	Policy string
	Title  string
	Output string
	Tags   tags.Tags
	State  State
	MIDI   *midi.Info
	Sound  *sound.Info
}

// IsMaster reports whether the track is the unmodified score.
func (t *Track) IsMaster() bool {
	return t.Policy == ""
}

func (t *Track) String() string {
	if t.IsMaster() {
		return fmt.Sprintf("%s (master)", t.ID)
	}
	name := t.Name
	if name == "" {
		name = fmt.Sprintf("part %d", t.Part)
	}
	return fmt.Sprintf("%s (%s %s)", t.ID, name, t.Policy)
}

// Failure is a track that couldn't be produced.
type Failure struct {
	Track *Track
	Err   error
}

// Result summarizes the tracks produced from a source.
type Result struct {
	Source string
	Title  string
	Tracks []*Track
	Failed []*Failure
}

func (r *Result) add(t *Track, err error) {
	if err != nil {
		r.Failed = append(r.Failed, &Failure{Track: t, Err: err})
		return
	}
	r.Tracks = append(r.Tracks, t)
}

// Total returns the number of attempted tracks.
func (r *Result) Total() int {
	return len(r.Tracks) + len(r.Failed)
}

// Err joins the errors of the failed tracks.
func (r *Result) Err() error {
	var errs []error
	for _, f := range r.Failed {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}
