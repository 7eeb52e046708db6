package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/igolaizola/choirmix/pkg/midi"
	"github.com/igolaizola/choirmix/pkg/mix"
	"github.com/igolaizola/choirmix/pkg/mscz"
	"github.com/igolaizola/choirmix/pkg/score"
	"github.com/igolaizola/choirmix/pkg/sound"
	"github.com/igolaizola/choirmix/pkg/tags"
	"github.com/oklog/ulid/v2"
)

// Converter converts a compressed score into a MIDI file.
type Converter interface {
	Convert(ctx context.Context, input, output string) (*midi.Info, error)
}

// Renderer converts a MIDI file into a tagged audio file.
type Renderer interface {
	Render(ctx context.Context, input, output string, t tags.Tags) (*sound.Info, error)
}

// Store publishes a produced track.
type Store interface {
	Upload(ctx context.Context, path string) error
}

// Ext is the extension of the produced tracks.
const Ext = ".mp3"

type Config struct {
	Converter Converter
	Renderer  Renderer
	// Store is optional.
	Store Store
	// Deriver defaults to tags.NewDeriver.
	Deriver *tags.Deriver
	// Policies defaults to every registered policy.
	Policies []string
	// Output is the tracks folder, the source folder is used if empty.
	Output string
	// TempDir defaults to the system temporary folder.
	TempDir    string
	SkipMaster bool
	Debug      bool
}

type policy struct {
	name  string
	apply mix.Policy
}

// Pipeline produces the master and the practice tracks of scores.
type Pipeline struct {
	converter  Converter
	renderer   Renderer
	store      Store
	deriver    *tags.Deriver
	policies   []policy
	output     string
	tempDir    string
	skipMaster bool
	debug      func(format string, args ...any)
}

func New(cfg *Config) (*Pipeline, error) {
	if cfg.Converter == nil {
		return nil, errors.New("pipeline: converter is required")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("pipeline: renderer is required")
	}
	deriver := cfg.Deriver
	if deriver == nil {
		deriver = tags.NewDeriver()
	}
	names := cfg.Policies
	if len(names) == 0 {
		names = mix.Names()
	}
	var policies []policy
	seen := map[string]struct{}{}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		apply, err := mix.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		policies = append(policies, policy{name: name, apply: apply})
	}
	debug := func(format string, args ...any) {
		if !cfg.Debug {
			return
		}
		format += "\n"
		log.Printf(format, args...)
	}
	return &Pipeline{
		converter:  cfg.Converter,
		renderer:   cfg.Renderer,
		store:      cfg.Store,
		deriver:    deriver,
		policies:   policies,
		output:     cfg.Output,
		tempDir:    cfg.TempDir,
		skipMaster: cfg.SkipMaster,
		debug:      debug,
	}, nil
}

// Load reads the score entry of the compressed score at path.
func Load(path string) (*score.Score, error) {
	a, err := mscz.Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	sc, _, err := read(a)
	return sc, err
}

func read(a *mscz.Archive) (*score.Score, string, error) {
	entry, err := a.Score()
	if err != nil {
		return nil, "", err
	}
	r, err := a.Open(entry)
	if err != nil {
		return nil, "", err
	}
	defer r.Close()
	sc, err := score.Read(r)
	if err != nil {
		return nil, "", fmt.Errorf("pipeline: %s in %q: %w", entry, a.Path(), err)
	}
	return sc, entry, nil
}

// Process renders the master track of source followed by one track per vocal
// part with notes and policy. Track failures are recorded in the result, an
// error is only returned if the source can't be loaded or ctx is done.
func (p *Pipeline) Process(ctx context.Context, source string) (*Result, error) {
	log.Printf("pipeline: loading %s\n", source)
	sc, err := Load(source)
	if err != nil {
		return nil, fmt.Errorf("pipeline: couldn't load %q: %w", source, err)
	}
	title := sc.Title(stem(source))
	res := &Result{Source: source, Title: title}

	var selected []int
	for _, part := range sc.Parts() {
		if !part.IsVocal() || part.IsEmpty() {
			continue
		}
		selected = append(selected, part.Index())
	}
	p.debug("pipeline: %q has %d parts, %d selected %v", title, len(sc.Parts()), len(selected), selected)

	if !p.skipMaster {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		t, err := p.Master(ctx, source, title)
		res.add(t, err)
	}
	for _, index := range selected {
		for _, pol := range p.policies {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			t, err := p.Track(ctx, source, index, pol.name)
			res.add(t, err)
		}
	}
	return res, nil
}

// Master renders the unmodified source.
func (p *Pipeline) Master(ctx context.Context, source, title string) (*Track, error) {
	t := p.newTrack(source, -1, "")
	t.Title = title
	t.Tags = p.deriver.Master(title)
	t.Output = p.outputPath(source, "", "")

	dir, cleanup, err := p.workspace(t)
	if err != nil {
		return t, err
	}
	defer cleanup()

	p.step(t, Loaded)
	if err := p.render(ctx, t, source, dir); err != nil {
		return t, err
	}
	return t, nil
}

// Track renders the part at index of source after applying the named policy.
// The source is copied into a temporary folder and reloaded, so it is never
// modified.
func (p *Pipeline) Track(ctx context.Context, source string, index int, name string) (*Track, error) {
	t := p.newTrack(source, index, name)
	apply, err := p.lookup(name)
	if err != nil {
		return t, err
	}

	dir, cleanup, err := p.workspace(t)
	if err != nil {
		return t, err
	}
	defer cleanup()

	// Load a private copy of the source
	p.step(t, Loaded)
	work := filepath.Join(dir, filepath.Base(source))
	if err := mscz.Copy(source, work); err != nil {
		return t, fmt.Errorf("pipeline: %w", err)
	}
	a, err := mscz.Open(work)
	if err != nil {
		return t, fmt.Errorf("pipeline: %w", err)
	}
	defer a.Close()
	sc, entry, err := read(a)
	if err != nil {
		return t, fmt.Errorf("pipeline: %w", err)
	}

	p.step(t, PartsBuilt)
	parts := sc.Parts()
	if index < 0 || index >= len(parts) {
		return t, fmt.Errorf("pipeline: part %d of %d: %w", index, len(parts), mix.ErrInvalidTarget)
	}
	partName, err := parts[index].Name()
	if err != nil {
		return t, fmt.Errorf("pipeline: %w", err)
	}
	t.Name = partName
	t.Title = sc.Title(stem(source))
	t.Tags = p.deriver.Policy(name, partName, t.Title)
	t.Output = p.outputPath(source, partName, name)

	p.step(t, PolicyApplied)
	if err := apply(parts, index); err != nil {
		return t, fmt.Errorf("pipeline: couldn't apply %s policy: %w", name, err)
	}

	p.step(t, Serialized)
	if _, err := sc.WriteTo(a.Create(entry)); err != nil {
		return t, fmt.Errorf("pipeline: couldn't serialize score: %w", err)
	}
	if err := a.Commit(); err != nil {
		return t, fmt.Errorf("pipeline: %w", err)
	}
	if err := a.Close(); err != nil {
		return t, fmt.Errorf("pipeline: %w", err)
	}

	if err := p.render(ctx, t, work, dir); err != nil {
		return t, err
	}
	return t, nil
}

func (p *Pipeline) lookup(name string) (mix.Policy, error) {
	for _, pol := range p.policies {
		if pol.name == name {
			return pol.apply, nil
		}
	}
	apply, err := mix.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return apply, nil
}

func (p *Pipeline) render(ctx context.Context, t *Track, input, dir string) error {
	log.Printf("pipeline: %s converting score to midi\n", t)
	mid := filepath.Join(dir, t.ID.String()+".mid")
	info, err := p.converter.Convert(ctx, input, mid)
	if err != nil {
		return fmt.Errorf("pipeline: couldn't convert %s: %w", t, err)
	}
	t.MIDI = info
	p.debug("pipeline: %s midi %s", t, info)

	log.Printf("pipeline: %s converting midi to mp3\n", t)
	if err := os.MkdirAll(filepath.Dir(t.Output), 0755); err != nil {
		return fmt.Errorf("pipeline: couldn't create output folder: %w", err)
	}
	snd, err := p.renderer.Render(ctx, mid, t.Output, t.Tags)
	if err != nil {
		return fmt.Errorf("pipeline: couldn't render %s: %w", t, err)
	}
	t.Sound = snd
	p.step(t, Rendered)

	if p.store != nil {
		if err := p.store.Upload(ctx, t.Output); err != nil {
			return fmt.Errorf("pipeline: couldn't store %s: %w", t.Output, err)
		}
		p.debug("pipeline: %s stored %s", t, t.Output)
	}
	return nil
}

func (p *Pipeline) newTrack(source string, index int, policy string) *Track {
	return &Track{
		ID:     ulid.Make(),
		Source: source,
		Part:   index,
		Policy: policy,
	}
}

// workspace creates the temporary folder of a track and returns the function
// that removes it.
func (p *Pipeline) workspace(t *Track) (string, func(), error) {
	dir, err := os.MkdirTemp(p.tempDir, "choirmix-"+strings.ToLower(t.ID.String())+"-")
	if err != nil {
		return "", nil, fmt.Errorf("pipeline: couldn't create temp dir: %w", err)
	}
	p.debug("pipeline: %s workspace %s", t, dir)
	return dir, func() {
		log.Printf("pipeline: %s cleaning up\n", t)
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("pipeline: couldn't remove %s: %v\n", dir, err)
		}
	}, nil
}

func (p *Pipeline) step(t *Track, s State) {
	t.State = s
	p.debug("pipeline: %s %s", t, s)
}

func (p *Pipeline) outputPath(source, part, policy string) string {
	dir := p.output
	if dir == "" {
		dir = filepath.Dir(source)
	}
	return tags.FileName(filepath.Join(dir, filepath.Base(source)), part, policy, Ext)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
