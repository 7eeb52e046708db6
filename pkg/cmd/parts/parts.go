package parts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/igolaizola/choirmix/pkg/pipeline"
)

type Config struct {
	Input string
}

// Run prints the parts of every score found in the input. Scores that can't
// be loaded are reported and skipped.
func Run(ctx context.Context, cfg *Config) error {
	return run(ctx, os.Stdout, cfg)
}

func run(ctx context.Context, w io.Writer, cfg *Config) error {
	sources, err := pipeline.Discover(cfg.Input)
	if err != nil {
		return fmt.Errorf("parts: %w", err)
	}
	var errs []error
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := Print(w, source); err != nil {
			log.Println(err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Print writes the title of the score at source followed by one line per
// part with its name, kind and mixing attributes.
func Print(w io.Writer, source string) error {
	sc, err := pipeline.Load(source)
	if err != nil {
		return fmt.Errorf("parts: couldn't load %q: %w", source, err)
	}
	title := sc.Title("")
	if title == "" {
		title = "(untitled)"
	}
	if _, err := fmt.Fprintf(w, "%s: %s\n", source, title); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range sc.Parts() {
		name, err := p.Name()
		if err != nil {
			name = "?"
		}
		kind := "instrument"
		if p.IsVocal() {
			kind = "vocal"
		}
		if p.IsEmpty() {
			kind += " (empty)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.Index(), name, kind, p.Mixing())
	}
	return tw.Flush()
}
