package cli

import (
	"context"
	"flag"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/igolaizola/choirmix/pkg/cmd/parts"
	"github.com/igolaizola/choirmix/pkg/cmd/render"
	"github.com/igolaizola/choirmix/pkg/mix"
	"github.com/igolaizola/choirmix/pkg/tags"
	"github.com/peterbourgon/ff/ffyaml"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

// EnvPrefix is the prefix of the environment variables read by every command.
const EnvPrefix = "CHOIRMIX"

func New(version, commit, date string) *ffcli.Command {
	fs := flag.NewFlagSet("choirmix", flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "choirmix [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newVersionCommand(version, commit, date),
			newRenderCommand(),
			newPartsCommand(),
		},
	}
}

func newVersionCommand(version, commit, date string) *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "choirmix version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := version
			if v == "" {
				if buildInfo, ok := debug.ReadBuildInfo(); ok {
					v = buildInfo.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			versionFields := []string{v}
			if commit != "" {
				versionFields = append(versionFields, commit)
			}
			if date != "" {
				versionFields = append(versionFields, date)
			}
			fmt.Println(strings.Join(versionFields, " "))
			return nil
		},
	}
}

func newRenderCommand() *ffcli.Command {
	cmd := "render"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &render.Config{}

	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.Input, "input", "", "mscz file, folder or glob pattern (e.g. 'scores/**/*.mscz')")
	fs.StringVar(&cfg.Output, "output", "", "output folder (defaults to the folder of each score)")

	fs.StringVar(&cfg.SoundFont, "soundfont", "", "soundfont file used by timidity (optional)")
	fs.StringVar(&cfg.MscoreBin, "mscore-bin", "", "path to the musescore binary")
	fs.StringVar(&cfg.TimidityBin, "timidity-bin", "", "path to the timidity binary")
	fs.StringVar(&cfg.Encoder, "encoder", "lame", "mp3 encoder (lame, ffmpeg)")
	fs.StringVar(&cfg.LameBin, "lame-bin", "", "path to the lame binary")
	fs.StringVar(&cfg.FFmpegBin, "ffmpeg-bin", "", "path to the ffmpeg binary")

	fs.StringVar(&cfg.Policies, "policies", strings.Join(mix.Names(), ","), "comma separated mix policies for each vocal part")
	fs.BoolVar(&cfg.SkipMaster, "skip-master", false, "skip the master track")

	fs.StringVar(&cfg.Artist, "artist", tags.DefaultArtist, "artist tag")
	fs.StringVar(&cfg.Genre, "genre", tags.DefaultGenre, "genre tag")
	fs.StringVar(&cfg.Album, "album", tags.DefaultAlbumFormat, "album tag, %s is replaced by the score title")

	fs.StringVar(&cfg.StoreType, "store", "", "optional store for the tracks (local, s3)")
	fs.StringVar(&cfg.StoreConn, "store-conn", "", "path for local, key:secret@bucket.region[/prefix] for s3")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("choirmix %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix(EnvPrefix),
		},
		ShortHelp: fmt.Sprintf("choirmix %s renders master and practice tracks", cmd),
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			if cfg.Input == "" && len(args) > 0 {
				cfg.Input = args[0]
			}
			return render.Run(ctx, cfg)
		},
	}
}

func newPartsCommand() *ffcli.Command {
	cmd := "parts"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &parts.Config{}

	fs.StringVar(&cfg.Input, "input", "", "mscz file, folder or glob pattern")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("choirmix %s [flags]", cmd),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithEnvVarPrefix(EnvPrefix),
		},
		ShortHelp: fmt.Sprintf("choirmix %s lists parts and their mixing", cmd),
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			if cfg.Input == "" && len(args) > 0 {
				cfg.Input = args[0]
			}
			return parts.Run(ctx, cfg)
		},
	}
}
