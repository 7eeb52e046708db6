package mix

import (
	"errors"
	"fmt"

	"github.com/igolaizola/choirmix/pkg/score"
)

var ErrInvalidTarget = errors.New("mix: invalid target")

const (
	SoloName     = "solo"
	DominantName = "dominant"
)

// Policy sets the mixing attributes of every part in order to highlight the
// target part.
type Policy func(parts []*score.Part, target int) error

var policies = map[string]Policy{
	SoloName:     Solo,
	DominantName: Dominant,
}

// Lookup returns the policy registered with the given name.
func Lookup(name string) (Policy, error) {
	p, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("mix: unknown policy %q", name)
	}
	return p, nil
}

// Names returns the registered policy names in rendering order.
func Names() []string {
	return []string{SoloName, DominantName}
}

func check(parts []*score.Part, target int) error {
	if target < 0 || target >= len(parts) {
		return fmt.Errorf("%w: index %d with %d parts", ErrInvalidTarget, target, len(parts))
	}
	return nil
}

// Solo isolates the target part.
func Solo(parts []*score.Part, target int) error {
	if err := check(parts, target); err != nil {
		return err
	}

	// MuseScore doesn't apply solo when exporting (https://musescore.org/en/node/21854),
	// so the other parts are muted and silenced. Solo is still set on the target.
	for _, p := range parts {
		p.Mute()
		p.Unsolo()
		if err := p.SetVolume(0); err != nil {
			return err
		}
	}

	solo := parts[target]
	solo.Solo()
	solo.Unmute()
	if err := solo.SetPan(0); err != nil {
		return err
	}
	return solo.SetVolume(110)
}

// Dominant puts the target part on the right channel at full presence and
// moves the rest to the left channel, other vocals above the instruments.
func Dominant(parts []*score.Part, target int) error {
	if err := check(parts, target); err != nil {
		return err
	}

	for _, p := range parts {
		p.Unsolo()
	}

	for i, p := range parts {
		if i == target {
			continue
		}
		volume := 40
		if p.IsVocal() {
			volume = 50
		}
		if err := p.SetPan(-1); err != nil {
			return err
		}
		if err := p.SetVolume(volume); err != nil {
			return err
		}
	}

	dominant := parts[target]
	dominant.Unmute()
	if err := dominant.SetPan(1); err != nil {
		return err
	}
	return dominant.SetVolume(110)
}
