package tag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.senan.xyz/taglib"

	"github.com/xeptore/tunedl/fs"
)

// writeOgg stores Vorbis comments and the front cover of an Ogg Opus file. The tags are written
// into a copy that replaces the original only once both writes succeeded.
func writeOgg(path string, fields Fields, art []byte) (err error) {
	b, err := os.ReadFile(path)
	if nil != err {
		return fmt.Errorf("%w: failed to read ogg file: %v", ErrPersist, err)
	}

	// The copy keeps the extension so the container is recognized by name as well as content.
	tmp := fs.PartPath(path, uuid.NewString()) + filepath.Ext(path)
	if err := os.WriteFile(tmp, b, 0o644); nil != err { //nolint:gosec
		return fmt.Errorf("%w: failed to copy ogg file: %v", ErrPersist, err)
	}
	defer func() {
		if rmErr := os.Remove(tmp); nil != rmErr && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("failed to remove temporary ogg file: %v", rmErr))
		}
	}()

	tags := map[string][]string{
		taglib.Title:       {fields.Title},
		taglib.Artist:      {fields.Artist()},
		taglib.Album:       {fields.Album},
		taglib.TrackNumber: {strconv.FormatUint(uint64(fields.Track), 10)},
		taglib.DiscNumber:  {strconv.Itoa(fields.Disc)},
	}
	if err := taglib.WriteTags(tmp, tags, 0); nil != err {
		return fmt.Errorf("%w: failed to write vorbis comments: %v", ErrPersist, err)
	}

	if nil != art {
		if err := taglib.WriteImage(tmp, art); nil != err {
			return fmt.Errorf("%w: failed to write picture: %v", ErrPersist, err)
		}
	}

	if err := os.Rename(tmp, path); nil != err {
		return fmt.Errorf("%w: failed to replace ogg file: %v", ErrPersist, err)
	}

	return nil
}

func readOgg(path string) (*Summary, error) {
	tags, err := taglib.ReadTags(path)
	if nil != err {
		return nil, fmt.Errorf("failed to read vorbis comments: %v", err)
	}

	first := func(key string) string {
		if vals := tags[key]; len(vals) > 0 {
			return vals[0]
		}

		return ""
	}

	title := first(taglib.Title)
	if title == "" {
		return nil, ErrTagMissing
	}

	// A picture that cannot be decoded counts as absent.
	img, err := taglib.ReadImage(path)

	return &Summary{
		Title:      title,
		Artist:     first(taglib.Artist),
		Album:      first(taglib.Album),
		Disc:       leadingInt(first(taglib.DiscNumber)),
		Track:      leadingInt(first(taglib.TrackNumber)),
		HasPicture: nil == err && len(img) > 0,
	}, nil
}
