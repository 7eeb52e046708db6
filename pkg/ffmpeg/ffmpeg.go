package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/igolaizola/choirmix/pkg/tags"
	"github.com/igolaizola/choirmix/pkg/tool"
)

// BinPath is the default path to the ffmpeg binary
var BinPath = "ffmpeg"

type ffmpeg struct {
	bin     string
	bitrate string
}

func New(bin string) *ffmpeg {
	if bin == "" {
		bin = BinPath
	}
	return &ffmpeg{bin: bin, bitrate: "320k"}
}

func (f *ffmpeg) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, f.bin, "-version")
	data, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg: couldn't get version: %w", tool.Failure(err, data))
	}
	line := tool.FirstLine(data)
	if !strings.HasPrefix(line, "ffmpeg version") {
		return "", fmt.Errorf("ffmpeg: invalid version: %s", line)
	}
	return strings.TrimPrefix(line, "ffmpeg version "), nil
}

// Metadata returns the ffmpeg flags that embed the given tags.
func Metadata(t tags.Tags) []string {
	var args []string
	for _, kv := range t.Fields() {
		args = append(args, "-metadata", fmt.Sprintf("%s=%s", kv[0], kv[1]))
	}
	return args
}

// Encode converts a wav file to mp3 embedding the given tags.
func (f *ffmpeg) Encode(ctx context.Context, input, output string, t tags.Tags) error {
	if ext := filepath.Ext(input); ext != ".wav" {
		return fmt.Errorf("ffmpeg: input file must be a wav file: %s", ext)
	}
	if ext := filepath.Ext(output); ext != ".mp3" {
		return fmt.Errorf("ffmpeg: output file must be a mp3 file: %s", ext)
	}

	// Use a temporary file so a failed encoding doesn't leave a broken output
	tmp := fmt.Sprintf("%s.tmp%s", output, filepath.Ext(output))

	args := []string{"-y", "-i", input, "-codec:a", "libmp3lame", "-b:a", f.bitrate, "-ac", "2"}
	args = append(args, Metadata(t)...)
	args = append(args, tmp)
	cmd := exec.CommandContext(ctx, f.bin, args...)
	data, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg: couldn't encode: %w", tool.Failure(err, data))
	}

	// Move the temporary file to the output path
	_ = os.Remove(output)
	if err := os.Rename(tmp, output); err != nil {
		return fmt.Errorf("ffmpeg: couldn't rename temporary file: %w: %w", tool.ErrExternalTool, err)
	}
	return nil
}
