package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// SourceExt is the extension of compressed scores.
const SourceExt = ".mscz"

// Discover returns the compressed scores of input. A folder is searched
// recursively, a glob pattern (e.g. "scores/**/*.mscz") is expanded and any
// other path is returned as is.
func Discover(input string) ([]string, error) {
	if input == "" {
		return nil, errors.New("pipeline: input is required")
	}
	var matches []string
	info, err := os.Stat(input)
	switch {
	case err == nil && !info.IsDir():
		return []string{input}, nil
	case err == nil:
		names, err := doublestar.Glob(os.DirFS(input), "**/*"+SourceExt)
		if err != nil {
			return nil, fmt.Errorf("pipeline: couldn't search %q: %w", input, err)
		}
		for _, name := range names {
			matches = append(matches, filepath.Join(input, filepath.FromSlash(name)))
		}
		matches = regular(matches)
	default:
		candidates, err := doublestar.FilepathGlob(input)
		if err != nil {
			return nil, fmt.Errorf("pipeline: couldn't glob %q: %w", input, err)
		}
		matches = regular(candidates)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pipeline: no scores found in %q", input)
	}
	return matches, nil
}

func regular(matches []string) []string {
	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files
}
