package tag

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/xeptore/tunedl/media"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio container")
	ErrPersist           = errors.New("failed to persist tags")
	ErrTagMissing        = errors.New("tag missing")
)

const (
	mimeMPEG = "audio/mpeg"
	mimeFLAC = "audio/flac"
	mimeOgg  = "audio/ogg"
)

type Fields struct {
	Title   string
	Artists []string
	Album   string
	Disc    int
	Track   uint
}

func FieldsFromTrack(t media.Track) Fields {
	return Fields{
		Title:   t.Title,
		Artists: t.Artists,
		Album:   t.Album,
		Disc:    t.DiscNumber,
		Track:   t.TrackNumber,
	}
}

func (f Fields) Artist() string {
	return media.JoinArtists(f.Artists)
}

type Tagger struct{}

func NewTagger() *Tagger {
	return &Tagger{}
}

// Write stores fields in the file's native tag container, embedding the image at artPath
// as its front cover when that file exists.
func (t *Tagger) Write(ctx context.Context, logger zerolog.Logger, path string, fields Fields, artPath string) error {
	if err := ctx.Err(); nil != err {
		return err
	}

	format, err := probe(path)
	if nil != err {
		return err
	}

	art := readArt(logger, artPath)

	switch format {
	case mimeMPEG:
		return writeID3(path, fields, art)
	case mimeFLAC:
		return writeFLAC(path, fields, art)
	case mimeOgg:
		return writeOgg(path, fields, art)
	default:
		panic("unreachable: " + format)
	}
}

func probe(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if nil != err {
		return "", fmt.Errorf("failed to detect audio file type: %v", err)
	}

	switch {
	case mtype.Is(mimeMPEG):
		return mimeMPEG, nil
	case mtype.Is(mimeFLAC):
		return mimeFLAC, nil
	case mtype.Is(mimeOgg):
		return mimeOgg, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
	}
}

func readArt(logger zerolog.Logger, artPath string) []byte {
	if artPath == "" {
		return nil
	}

	b, err := os.ReadFile(artPath)
	if nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("art_path", artPath).Msg("Failed to read cover file, tagging without picture")
		}

		return nil
	}

	if len(b) == 0 {
		return nil
	}

	return b
}
