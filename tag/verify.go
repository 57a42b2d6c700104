package tag

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Summary is what a tagged file reports back after being reopened.
type Summary struct {
	Title      string
	Artist     string
	Album      string
	Disc       int
	Track      int
	HasPicture bool
}

func (s Summary) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("title", s.Title).
		Str("artist", s.Artist).
		Str("album", s.Album).
		Int("disc", s.Disc).
		Int("track", s.Track).
		Bool("has_picture", s.HasPicture)
}

type Verifier struct{}

func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify reopens path and reads its tags. A file without a title tag yields ErrTagMissing.
func (v *Verifier) Verify(ctx context.Context, path string) (*Summary, error) {
	if err := ctx.Err(); nil != err {
		return nil, err
	}

	format, err := probe(path)
	if nil != err {
		return nil, err
	}

	switch format {
	case mimeMPEG:
		return readID3(path)
	case mimeFLAC:
		return readFLAC(path)
	case mimeOgg:
		return readOgg(path)
	default:
		panic("unreachable: " + format)
	}
}

// leadingInt reads "3" as well as "3/12".
func leadingInt(s string) int {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(s)
	if nil != err {
		return 0
	}

	return n
}
