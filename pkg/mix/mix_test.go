package mix

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/igolaizola/choirmix/pkg/score"
)

func load(t *testing.T) *score.Score {
	t.Helper()
	b, err := os.ReadFile("../score/testdata/choir.mscx")
	if err != nil {
		t.Fatal(err)
	}
	s, err := score.Parse(b)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSolo(t *testing.T) {
	for target := 0; target < 3; target++ {
		s := load(t)
		parts := s.Parts()
		if err := Solo(parts, target); err != nil {
			t.Fatalf("Solo(%d) err = %v; want nil", target, err)
		}
		for i, p := range parts {
			got := p.Mixing()
			if i == target {
				want := score.Mixing{Solo: true, Volume: 110, Pan: 0}
				if got != want {
					t.Errorf("Solo(%d) target %d = %v; want %v", target, i, got, want)
				}
				continue
			}
			if !got.Muted || got.Solo || got.Volume != 0 {
				t.Errorf("Solo(%d) part %d = %v; want muted, not solo, volume 0", target, i, got)
			}
		}
	}
}

func TestDominant(t *testing.T) {
	for target := 0; target < 3; target++ {
		s := load(t)
		parts := s.Parts()
		parts[0].Mute()
		if err := Dominant(parts, target); err != nil {
			t.Fatalf("Dominant(%d) err = %v; want nil", target, err)
		}
		for i, p := range parts {
			got := p.Mixing()
			if got.Solo {
				t.Errorf("Dominant(%d) part %d is solo", target, i)
			}
			switch {
			case i == target:
				if got.Muted || got.Pan != 1 || got.Volume != 110 {
					t.Errorf("Dominant(%d) target = %v; want unmuted, pan 1, volume 110", target, got)
				}
			case p.IsVocal():
				if got.Pan != -1 || got.Volume != 50 {
					t.Errorf("Dominant(%d) vocal %d = %v; want pan -1, volume 50", target, i, got)
				}
			default:
				if got.Pan != -1 || got.Volume != 40 {
					t.Errorf("Dominant(%d) other %d = %v; want pan -1, volume 40", target, i, got)
				}
				// Backing parts keep their mute state
				if !got.Muted {
					t.Errorf("Dominant(%d) other %d lost its mute flag", target, i)
				}
			}
		}
	}
}

func TestOrderIndependent(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			policy, err := Lookup(name)
			if err != nil {
				t.Fatal(err)
			}

			forward := load(t)
			if err := policy(forward.Parts(), 1); err != nil {
				t.Fatal(err)
			}

			backward := load(t)
			parts := backward.Parts()
			reversed := []*score.Part{parts[2], parts[1], parts[0]}
			if err := policy(reversed, 1); err != nil {
				t.Fatal(err)
			}

			a, err := forward.Bytes()
			if err != nil {
				t.Fatal(err)
			}
			b, err := backward.Bytes()
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(a, b) {
				t.Fatalf("policy %s depends on part order", name)
			}
		})
	}
}

func TestInvalidTarget(t *testing.T) {
	for _, target := range []int{-1, 3, 10} {
		for _, name := range Names() {
			policy, _ := Lookup(name)
			s := load(t)
			if err := policy(s.Parts(), target); !errors.Is(err, ErrInvalidTarget) {
				t.Errorf("%s(%d) err = %v; want %v", name, target, err, ErrInvalidTarget)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	if _, err := Lookup("karaoke"); err == nil {
		t.Fatalf("Lookup(%q) err = nil; want error", "karaoke")
	}
	for _, name := range Names() {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q) err = %v; want nil", name, err)
		}
	}
}
