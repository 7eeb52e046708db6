package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/igolaizola/choirmix/pkg/ffmpeg"
	"github.com/igolaizola/choirmix/pkg/filestore"
	"github.com/igolaizola/choirmix/pkg/lame"
	"github.com/igolaizola/choirmix/pkg/mscore"
	"github.com/igolaizola/choirmix/pkg/pipeline"
	audio "github.com/igolaizola/choirmix/pkg/render"
	"github.com/igolaizola/choirmix/pkg/tags"
	"github.com/igolaizola/choirmix/pkg/timidity"
)

type Config struct {
	Debug  bool
	Input  string
	Output string

	SoundFont   string
	MscoreBin   string
	TimidityBin string
	Encoder     string
	LameBin     string
	FFmpegBin   string

	Policies   string
	SkipMaster bool

	Artist string
	Genre  string
	Album  string

	StoreType string
	StoreConn string
}

type versioner interface {
	Version(ctx context.Context) (string, error)
}

type encoder interface {
	audio.Encoder
	versioner
}

// Run renders the master and practice tracks of every score found in the
// input.
func Run(ctx context.Context, cfg *Config) error {
	var processed, total, failed int
	log.Println("render: started")
	defer func() {
		log.Printf("render: ended (%d scores, %d tracks, %d failed)\n", processed, total, failed)
	}()

	debug := func(format string, args ...any) {
		if !cfg.Debug {
			return
		}
		format += "\n"
		log.Printf(format, args...)
	}

	sources, err := pipeline.Discover(cfg.Input)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	debug("render: found %d scores", len(sources))

	// Check external tools before starting
	converter := mscore.New(cfg.MscoreBin)
	synth := timidity.New(&timidity.Config{
		Bin:       cfg.TimidityBin,
		SoundFont: cfg.SoundFont,
	})
	encName, enc, err := newEncoder(cfg.Encoder, cfg)
	if err != nil {
		return err
	}
	for _, tool := range []struct {
		name string
		v    versioner
	}{
		{"mscore", converter},
		{"timidity", synth},
		{encName, enc},
	} {
		version, err := tool.v.Version(ctx)
		if err != nil {
			return fmt.Errorf("render: couldn't get %s version: %w", tool.name, err)
		}
		debug("render: %s", version)
	}

	renderer, err := audio.New(&audio.Config{
		Synthesizer: synth,
		Encoder:     enc,
	})
	if err != nil {
		return err
	}

	var store pipeline.Store
	if cfg.StoreType != "" {
		s, err := filestore.New(cfg.StoreType, cfg.StoreConn, cfg.Debug)
		if err != nil {
			return fmt.Errorf("render: couldn't create file store: %w", err)
		}
		store = s
	}

	p, err := pipeline.New(&pipeline.Config{
		Converter: converter,
		Renderer:  renderer,
		Store:     store,
		Deriver: &tags.Deriver{
			Artist:      cfg.Artist,
			Genre:       cfg.Genre,
			AlbumFormat: cfg.Album,
		},
		Policies:   splitList(cfg.Policies),
		Output:     cfg.Output,
		SkipMaster: cfg.SkipMaster,
		Debug:      cfg.Debug,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	// Print time stats
	start := time.Now()
	defer func() {
		log.Printf("render: total time %s\n", time.Since(start).Round(time.Millisecond))
	}()

	var errs []error
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("render: (%d/%d) %s\n", i+1, len(sources), source)
		res, err := p.Process(ctx, source)
		if res != nil {
			processed++
			total += res.Total()
			failed += len(res.Failed)
			for _, f := range res.Failed {
				log.Printf("render: %s failed: %v\n", f.Track, f.Err)
			}
			for _, t := range res.Tracks {
				var duration time.Duration
				if t.Sound != nil {
					duration = t.Sound.Duration
				}
				log.Printf("render: %s %s (%s)\n", t.Output, t.Tags.Title, duration.Round(time.Second))
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Println(err)
			errs = append(errs, err)
		}
	}
	if failed > 0 {
		errs = append(errs, fmt.Errorf("render: %d of %d tracks failed", failed, total))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func newEncoder(name string, cfg *Config) (string, encoder, error) {
	switch name {
	case "", "lame":
		return "lame", lame.New(cfg.LameBin), nil
	case "ffmpeg":
		return "ffmpeg", ffmpeg.New(cfg.FFmpegBin), nil
	default:
		return "", nil, fmt.Errorf("render: unknown encoder %q", name)
	}
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}
