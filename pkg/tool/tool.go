package tool

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExternalTool is wrapped by every error caused by an external program
// that failed or produced unusable output.
var ErrExternalTool = errors.New("external tool failure")

// Failure wraps the error returned by a command together with its output.
func Failure(err error, output []byte) error {
	msg := strings.TrimSpace(string(output))
	if msg == "" {
		return fmt.Errorf("%w: %w", ErrExternalTool, err)
	}
	return fmt.Errorf("%w: %w: %s", ErrExternalTool, err, msg)
}

// FirstLine returns the first non empty line of a command output.
func FirstLine(output []byte) string {
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
