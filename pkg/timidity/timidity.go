package timidity

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/igolaizola/choirmix/pkg/tool"
)

// BinPath is the default path to the timidity binary
var BinPath = "timidity"

// wavHeaderSize is the size of a canonical RIFF/WAVE header.
const wavHeaderSize = 44

type Config struct {
	Bin       string
	SoundFont string
	// Amplification in percent, 100 keeps the original level.
	Amplification int
}

// Timidity synthesizes MIDI files with TiMidity++.
type Timidity struct {
	bin           string
	soundFont     string
	amplification int
}

func New(cfg *Config) *Timidity {
	bin := BinPath
	if cfg.Bin != "" {
		bin = cfg.Bin
	}
	amplification := 100
	if cfg.Amplification > 0 {
		amplification = cfg.Amplification
	}
	return &Timidity{
		bin:           bin,
		soundFont:     cfg.SoundFont,
		amplification: amplification,
	}
}

func (t *Timidity) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, t.bin, "--version")
	data, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("timidity: couldn't get version: %w", tool.Failure(err, data))
	}
	line := tool.FirstLine(data)
	if !strings.Contains(strings.ToLower(line), "timidity") {
		return "", fmt.Errorf("timidity: invalid version: %s", line)
	}
	return line, nil
}

func (t *Timidity) args(input, output string) []string {
	// Default program 0 for channels without a program change
	args := []string{"-EI0"}
	if t.soundFont != "" {
		args = append(args, "-x", fmt.Sprintf("soundfont %s", t.soundFont))
	}
	return append(args,
		fmt.Sprintf("-A%d", t.amplification),
		"-Ow",
		"-o", output,
		input,
	)
}

// Synthesize renders the MIDI file at input into a WAV file at output.
func (t *Timidity) Synthesize(ctx context.Context, input, output string) error {
	if ext := filepath.Ext(output); ext != ".wav" {
		return fmt.Errorf("timidity: output file must be a wav file: %s", ext)
	}
	if t.soundFont != "" {
		if _, err := os.Stat(t.soundFont); err != nil {
			return fmt.Errorf("timidity: couldn't find sound font: %w", err)
		}
	}
	cmd := exec.CommandContext(ctx, t.bin, t.args(input, output)...)
	data, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("timidity: couldn't synthesize %q: %w", input, tool.Failure(err, data))
	}

	// Timidity exits cleanly when it can't load instruments
	info, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("timidity: couldn't synthesize %q: %w: %w", input, tool.ErrExternalTool, err)
	}
	if info.Size() <= wavHeaderSize {
		return fmt.Errorf("timidity: couldn't synthesize %q: %w: no samples written: %s", input, tool.ErrExternalTool, strings.TrimSpace(string(data)))
	}
	return nil
}
