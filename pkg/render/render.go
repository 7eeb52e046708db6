package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/igolaizola/choirmix/pkg/sound"
	"github.com/igolaizola/choirmix/pkg/tags"
	"github.com/igolaizola/choirmix/pkg/tool"
)

// Synthesizer renders a MIDI file into a WAV file.
type Synthesizer interface {
	Synthesize(ctx context.Context, input, output string) error
}

// Encoder compresses a WAV file embedding the given tags.
type Encoder interface {
	Encode(ctx context.Context, input, output string, t tags.Tags) error
}

type Config struct {
	Synthesizer Synthesizer
	Encoder     Encoder
	// Probe checks the encoded file, sound.Probe is used if nil.
	Probe func(path string) (*sound.Info, error)
}

// Renderer converts MIDI files to tagged audio files.
type Renderer struct {
	synth   Synthesizer
	encoder Encoder
	probe   func(path string) (*sound.Info, error)
}

func New(cfg *Config) (*Renderer, error) {
	if cfg.Synthesizer == nil {
		return nil, errors.New("render: synthesizer is required")
	}
	if cfg.Encoder == nil {
		return nil, errors.New("render: encoder is required")
	}
	probe := cfg.Probe
	if probe == nil {
		probe = sound.Probe
	}
	return &Renderer{
		synth:   cfg.Synthesizer,
		encoder: cfg.Encoder,
		probe:   probe,
	}, nil
}

// Render synthesizes the MIDI file at input and encodes it at output. The
// intermediate WAV file is written next to input and always removed.
func (r *Renderer) Render(ctx context.Context, input, output string, t tags.Tags) (*sound.Info, error) {
	wav := strings.TrimSuffix(input, filepath.Ext(input)) + ".wav"
	defer func() { _ = os.Remove(wav) }()

	if err := r.synth.Synthesize(ctx, input, wav); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := r.encoder.Encode(ctx, wav, output, t); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	info, err := r.probe(output)
	if err != nil {
		_ = os.Remove(output)
		return nil, fmt.Errorf("render: invalid output %q: %w: %w", output, tool.ErrExternalTool, err)
	}
	return info, nil
}
