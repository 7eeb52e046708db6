package sound

import (
	"errors"
	"fmt"
	"os"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"
)

var ErrEmpty = errors.New("sound: empty audio")

// Info describes a decoded MP3 file.
type Info struct {
	SampleRate int
	Duration   time.Duration
}

// Probe decodes the MP3 file at path and returns its sample rate and duration.
func Probe(path string) (*Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sound: couldn't open file: %w", err)
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return nil, fmt.Errorf("sound: couldn't decode mp3 %q: %w", path, err)
	}
	rate := decoder.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("sound: invalid sample rate %d in %q", rate, path)
	}

	// The decoder outputs 16-bit stereo samples, 4 bytes per frame
	frames := decoder.Length() / 4
	duration := time.Duration(float64(frames) / float64(rate) * float64(time.Second))
	if duration <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmpty, path)
	}
	return &Info{
		SampleRate: rate,
		Duration:   duration,
	}, nil
}
