package lame

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

// BinPath is the default path to the lame binary
var BinPath = "lame"

type Lame struct {
	bin string
}

func New(bin string) *Lame {
	if bin == "" {
		bin = BinPath
	}
	return &Lame{bin: bin}
}

func (l *Lame) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, l.bin, "--version")
	data, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("lame: couldn't get version: %w", tool.Failure(err, data))
	}
	line := tool.FirstLine(data)
	if !strings.HasPrefix(line, "LAME") {
		return "", fmt.Errorf("lame: invalid version: %s", line)
	}
	return line, nil
}

// Flags returns the id3 flags for the given tags. Missing tags are omitted.
func Flags(t tags.Tags) []string {
	var args []string
	for _, kv := range []struct {
		flag  string
		value string
	}{
		{"--tt", t.Title},
		{"--ta", t.Artist},
		{"--tl", t.Album},
		{"--tg", t.Genre},
	} {
		if kv.value == "" {
			continue
		}
		args = append(args, kv.flag, kv.value)
	}
	return args
}

// Encode converts a wav file to mp3 embedding the given tags.
func (l *Lame) Encode(ctx context.Context, input, output string, t tags.Tags) error {
	if ext := filepath.Ext(output); ext != ".mp3" {
		return fmt.Errorf("lame: output file must be a mp3 file: %s", ext)
	}
	args := []string{"--silent"}
	args = append(args, Flags(t)...)
	args = append(args, input, output)
	cmd := exec.CommandContext(ctx, l.bin, args...)
	data, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(output)
		return fmt.Errorf("lame: couldn't encode: %w", tool.Failure(err, data))
	}
	return nil
}
