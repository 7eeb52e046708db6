package tags

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Tags is the metadata embedded into a rendered track. Empty fields are
// treated as absent.
type Tags struct {
	Artist string
	Genre  string
	Album  string
	Title  string
}

func (t Tags) String() string {
	var fields []string
	for _, kv := range t.Fields() {
		fields = append(fields, fmt.Sprintf("%s=%q", kv[0], kv[1]))
	}
	return strings.Join(fields, " ")
}

// Fields returns the present tags as key-value pairs in a stable order.
func (t Tags) Fields() [][2]string {
	var fields [][2]string
	for _, kv := range [][2]string{
		{"artist", t.Artist},
		{"genre", t.Genre},
		{"album", t.Album},
		{"title", t.Title},
	} {
		if kv[1] == "" {
			continue
		}
		fields = append(fields, kv)
	}
	return fields
}

const (
	DefaultArtist      = "News Choir"
	DefaultGenre       = "Chorus"
	DefaultAlbumFormat = "Practice: %s"
)

// Deriver builds the tags of every track produced from a score. AlbumFormat
// may contain %s placeholders that are replaced by the score title, any other
// text is kept literally.
type Deriver struct {
	Artist      string
	Genre       string
	AlbumFormat string
}

// NewDeriver returns a deriver with the default artist, genre and album.
func NewDeriver() *Deriver {
	return &Deriver{
		Artist:      DefaultArtist,
		Genre:       DefaultGenre,
		AlbumFormat: DefaultAlbumFormat,
	}
}

func (d *Deriver) base(title string) Tags {
	return Tags{
		Artist: d.Artist,
		Genre:  d.Genre,
		Album:  strings.ReplaceAll(d.AlbumFormat, "%s", title),
	}
}

// Master returns the tags of the unmodified score rendering.
func (d *Deriver) Master(title string) Tags {
	t := d.base(title)
	t.Title = title
	return t
}

// Solo returns the tags of the solo rendering of a part.
func (d *Deriver) Solo(part, title string) Tags {
	return d.Policy("solo", part, title)
}

// Dominant returns the tags of the dominant rendering of a part.
func (d *Deriver) Dominant(part, title string) Tags {
	return d.Policy("dominant", part, title)
}

// Policy returns the tags of a part rendering under the named policy,
// e.g. "Soprano (Solo) - Bobby Shaftoe".
func (d *Deriver) Policy(policy, part, title string) Tags {
	t := d.base(title)
	t.Title = fmt.Sprintf("%s (%s) - %s", part, capitalize(policy), title)
	return t
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var nonWordRegexp = regexp.MustCompile(`\W`)

// FileName returns the output path for a rendering of source. An empty part
// returns the master path, otherwise the part name and the policy are appended
// to the source name.
//
//	FileName("scores/Song.mscz", "", "", ".mp3") = "scores/Song.mp3"
//	FileName("scores/Song.mscz", "Soprano 1", "solo", ".mp3") = "scores/Song-Soprano_1-solo.mp3"
func FileName(source, part, policy, ext string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	if part == "" {
		return base + ext
	}
	return fmt.Sprintf("%s-%s-%s%s", base, nonWordRegexp.ReplaceAllString(part, "_"), policy, ext)
}
