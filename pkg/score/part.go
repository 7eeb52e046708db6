package score

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Mixing attribute defaults applied when the document doesn't define them.
const (
	DefaultVolume = 100
	DefaultPan    = 0.0

	MinVolume = 0
	MaxVolume = 127
)

// MIDI controller numbers stored under the part channel.
const (
	ctrlVolume = 7
	ctrlPan    = 10

	panCenter = 64
	panRange  = 63
)

var (
	voiceRegexp = regexp.MustCompile(`^voice\.`)
	intRegexp   = regexp.MustCompile(`^[+-]?[0-9]+`)
)

// IsVoice reports whether a MuseScore instrument id belongs to a voice.
func IsVoice(instrumentID string) bool {
	return voiceRegexp.MatchString(instrumentID)
}

// Part is one instrument or voice line of a score.
type Part struct {
	score *Score
	index int
}

// Mixing is a snapshot of the audio routing attributes of a part.
type Mixing struct {
	Muted  bool
	Solo   bool
	Volume int
	Pan    float64
}

func (m Mixing) String() string {
	return fmt.Sprintf("muted=%t solo=%t volume=%d pan=%.2f", m.Muted, m.Solo, m.Volume, m.Pan)
}

// Index returns the position of the part in the score.
func (p *Part) Index() int {
	return p.index
}

func (p *Part) element() *etree.Element {
	return p.score.parts[p.index]
}

// Name returns the track name of the part.
func (p *Part) Name() (string, error) {
	el := p.element().SelectElement("trackName")
	if el == nil {
		return "", fmt.Errorf("score: part %d: %w: trackName", p.index, ErrMissingField)
	}
	return el.Text(), nil
}

// IsVocal reports whether the part instrument is a voice.
func (p *Part) IsVocal() bool {
	el := p.element().FindElement("Instrument/instrumentId")
	if el == nil {
		return false
	}
	return IsVoice(el.Text())
}

// IsEmpty reports whether none of the staves of the part contain notes.
// Staves are declared inside the part by id and their content lives in the
// staff elements that are siblings of the part.
func (p *Part) IsEmpty() bool {
	el := p.element()
	ids := make(map[string]struct{})
	for _, staff := range el.SelectElements("Staff") {
		ids[staff.SelectAttrValue("id", "")] = struct{}{}
	}
	parent := el.Parent()
	if parent == nil {
		return true
	}
	for _, staff := range parent.SelectElements("Staff") {
		if _, ok := ids[staff.SelectAttrValue("id", "")]; !ok {
			continue
		}
		if staff.FindElement(".//Note") != nil {
			return false
		}
	}
	return true
}

// Mixing returns the current audio routing attributes of the part.
func (p *Part) Mixing() Mixing {
	return Mixing{
		Muted:  p.IsMuted(),
		Solo:   p.IsSolo(),
		Volume: p.Volume(),
		Pan:    p.Pan(),
	}
}

func (p *Part) IsMuted() bool {
	return p.flag("mute")
}

func (p *Part) Mute() {
	p.setFlag("mute")
}

func (p *Part) Unmute() {
	p.clearFlag("mute")
}

func (p *Part) IsSolo() bool {
	return p.flag("solo")
}

// Solo marks the part as soloed. MuseScore doesn't honor this flag when
// exporting, see the solo policy in package mix.
func (p *Part) Solo() {
	p.setFlag("solo")
}

func (p *Part) Unsolo() {
	p.clearFlag("solo")
}

// Volume returns the channel volume in the range [0, 127].
func (p *Part) Volume() int {
	v, ok := p.control(ctrlVolume)
	if !ok {
		return DefaultVolume
	}
	return v
}

func (p *Part) SetVolume(v int) error {
	if v < MinVolume || v > MaxVolume {
		return fmt.Errorf("score: volume %d out of range [%d, %d]: %w", v, MinVolume, MaxVolume, ErrInvalidValue)
	}
	p.setControl(ctrlVolume, v)
	return nil
}

// Pan returns the stereo position in the range [-1, 1].
func (p *Part) Pan() float64 {
	v, ok := p.control(ctrlPan)
	if !ok {
		return DefaultPan
	}
	return math.Max(-1, float64(v-panCenter)/panRange)
}

// SetPan stores the stereo position as a controller value where 64 is the
// center. The encoding floors, so only -1, 0 and 1 are guaranteed to read
// back exactly.
func (p *Part) SetPan(v float64) error {
	if math.IsNaN(v) || v < -1 || v > 1 {
		return fmt.Errorf("score: pan %v out of range [-1, 1]: %w", v, ErrInvalidValue)
	}
	p.setControl(ctrlPan, int(math.Floor(v*panRange+panCenter)))
	return nil
}

func (p *Part) channel() *etree.Element {
	return p.element().FindElement("Instrument/Channel")
}

func (p *Part) ensureChannel() *etree.Element {
	if ch := p.channel(); ch != nil {
		return ch
	}
	el := p.element()
	instrument := el.SelectElement("Instrument")
	if instrument == nil {
		instrument = el.CreateElement("Instrument")
	}
	return instrument.CreateElement("Channel")
}

func (p *Part) flag(name string) bool {
	ch := p.channel()
	if ch == nil {
		return false
	}
	el := ch.SelectElement(name)
	return el != nil && strings.TrimSpace(el.Text()) != "0"
}

func (p *Part) setFlag(name string) {
	ch := p.ensureChannel()
	el := ch.SelectElement(name)
	if el == nil {
		el = ch.CreateElement(name)
	}
	el.SetText("1")
}

func (p *Part) clearFlag(name string) {
	ch := p.channel()
	if ch == nil {
		return
	}
	if el := ch.SelectElement(name); el != nil {
		ch.RemoveChild(el)
	}
}

func controlPath(ctrl int) string {
	return fmt.Sprintf("controller[@ctrl='%d']", ctrl)
}

func (p *Part) control(ctrl int) (int, bool) {
	ch := p.channel()
	if ch == nil {
		return 0, false
	}
	el := ch.FindElement(controlPath(ctrl))
	if el == nil {
		return 0, false
	}
	return parseInt(el.SelectAttrValue("value", "")), true
}

// parseInt reads the leading integer of s, trailing garbage is ignored and
// values without one read as zero.
func parseInt(s string) int {
	v, err := strconv.Atoi(intRegexp.FindString(strings.TrimSpace(s)))
	if err != nil {
		return 0
	}
	return v
}

func (p *Part) setControl(ctrl, v int) {
	ch := p.ensureChannel()
	el := ch.FindElement(controlPath(ctrl))
	if el == nil {
		el = ch.CreateElement("controller")
		el.CreateAttr("ctrl", strconv.Itoa(ctrl))
	}
	el.CreateAttr("value", strconv.Itoa(v))
}
