package tag

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/samber/lo"

	"github.com/xeptore/tunedl/fs"
)

const fieldDiscNumber = "DISCNUMBER"

func parseFLAC(path string) (*flac.File, error) {
	b, err := os.ReadFile(path)
	if nil != err {
		return nil, fmt.Errorf("failed to read flac file: %v", err)
	}

	f, err := flac.ParseBytes(bytes.NewReader(b))
	if nil != err {
		return nil, fmt.Errorf("failed to parse flac file: %v", err)
	}

	return f, nil
}

func vorbisBlock(f *flac.File) (*flacvorbis.MetaDataBlockVorbisComment, bool, error) {
	block, ok := lo.Find(f.Meta, func(b *flac.MetaDataBlock) bool { return b.Type == flac.VorbisComment })
	if !ok {
		return nil, false, nil
	}

	cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
	if nil != err {
		return nil, false, fmt.Errorf("failed to parse vorbis comment block: %v", err)
	}

	return cmt, true, nil
}

func writeFLAC(path string, fields Fields, art []byte) error {
	f, err := parseFLAC(path)
	if nil != err {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	cmt := flacvorbis.New()
	if prev, ok, err := vorbisBlock(f); nil != err {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	} else if ok {
		cmt.Vendor = prev.Vendor
	}

	pairs := [][2]string{
		{flacvorbis.FIELD_TITLE, fields.Title},
		{flacvorbis.FIELD_ARTIST, fields.Artist()},
		{flacvorbis.FIELD_ALBUM, fields.Album},
		{flacvorbis.FIELD_TRACKNUMBER, strconv.FormatUint(uint64(fields.Track), 10)},
		{fieldDiscNumber, strconv.Itoa(fields.Disc)},
	}
	for _, p := range pairs {
		if err := cmt.Add(p[0], p[1]); nil != err {
			return fmt.Errorf("%w: failed to add %s comment: %v", ErrPersist, p[0], err)
		}
	}

	var keptPictures []*flac.MetaDataBlock
	f.Meta = lo.Filter(f.Meta, func(b *flac.MetaDataBlock, _ int) bool {
		switch b.Type {
		case flac.VorbisComment:
			return false
		case flac.Picture:
			keptPictures = append(keptPictures, b)
			return false
		default:
			return true
		}
	})

	vorbis := cmt.Marshal()
	f.Meta = append(f.Meta, &vorbis)

	if nil != art {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", art, "image/jpeg")
		if nil != err {
			return fmt.Errorf("%w: failed to build picture block: %v", ErrPersist, err)
		}
		picture := pic.Marshal()
		f.Meta = append(f.Meta, &picture)
	} else {
		f.Meta = append(f.Meta, keptPictures...)
	}

	if err := fs.WriteFileAtomic(path, f.Marshal()); nil != err {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	return nil
}

func readFLAC(path string) (*Summary, error) {
	f, err := parseFLAC(path)
	if nil != err {
		return nil, err
	}

	cmt, ok, err := vorbisBlock(f)
	if nil != err {
		return nil, err
	}
	if !ok {
		return nil, ErrTagMissing
	}

	first := func(field string) string {
		vals, err := cmt.Get(field)
		if nil != err || len(vals) == 0 {
			return ""
		}

		return vals[0]
	}

	title := first(flacvorbis.FIELD_TITLE)
	if title == "" {
		return nil, ErrTagMissing
	}

	return &Summary{
		Title:      title,
		Artist:     first(flacvorbis.FIELD_ARTIST),
		Album:      first(flacvorbis.FIELD_ALBUM),
		Disc:       leadingInt(first(fieldDiscNumber)),
		Track:      leadingInt(first(flacvorbis.FIELD_TRACKNUMBER)),
		HasPicture: lo.ContainsBy(f.Meta, func(b *flac.MetaDataBlock) bool { return b.Type == flac.Picture }),
	}, nil
}
