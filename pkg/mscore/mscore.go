package mscore

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/igolaizola/choirmix/pkg/midi"
	"github.com/igolaizola/choirmix/pkg/tool"
)

// BinPath is the default path to the MuseScore binary
var BinPath = "mscore"

// MuseScore exports scores using the MuseScore command line.
type MuseScore struct {
	bin string
}

func New(bin string) *MuseScore {
	if bin == "" {
		bin = BinPath
	}
	return &MuseScore{bin: bin}
}

func (m *MuseScore) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, m.bin, args...)
	if os.Getenv("QT_QPA_PLATFORM") == "" {
		// Run without a display
		cmd.Env = append(os.Environ(), "QT_QPA_PLATFORM=offscreen")
	}
	return cmd
}

func (m *MuseScore) Version(ctx context.Context) (string, error) {
	data, err := m.command(ctx, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("mscore: couldn't get version: %w", tool.Failure(err, data))
	}
	line := tool.FirstLine(data)
	if !strings.Contains(strings.ToLower(line), "musescore") {
		return "", fmt.Errorf("mscore: invalid version: %s", line)
	}
	return line, nil
}

// Convert exports the score at input as a MIDI file at output.
func (m *MuseScore) Convert(ctx context.Context, input, output string) (*midi.Info, error) {
	if ext := filepath.Ext(output); ext != ".mid" && ext != ".midi" {
		return nil, fmt.Errorf("mscore: output file must be a midi file: %s", ext)
	}

	// Remove previous exports so a silent failure can't go unnoticed
	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("mscore: couldn't remove old output: %w", err)
	}

	data, err := m.command(ctx, input, "-o", output).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("mscore: couldn't convert %q: %w", input, tool.Failure(err, data))
	}

	// MuseScore may exit cleanly without writing a valid file
	info, err := midi.Inspect(output)
	if err != nil {
		return nil, fmt.Errorf("mscore: couldn't convert %q: %w: %w", input, tool.ErrExternalTool, err)
	}
	return info, nil
}
