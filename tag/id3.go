package tag

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bogem/id3v2"
)

const (
	frameTrack   = "TRCK"
	frameDisc    = "TPOS"
	framePicture = "APIC"
)

func writeID3(path string, fields Fields, art []byte) (err error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true}) //nolint:exhaustruct
	if nil != err {
		return fmt.Errorf("%w: failed to open id3 tag: %v", ErrPersist, err)
	}
	defer func() {
		if closeErr := t.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close audio file: %v", closeErr))
		}
	}()

	t.SetDefaultEncoding(id3v2.EncodingUTF8)
	t.SetTitle(fields.Title)
	t.SetArtist(fields.Artist())
	t.SetAlbum(fields.Album)

	t.DeleteFrames(frameTrack)
	t.AddTextFrame(frameTrack, id3v2.EncodingUTF8, strconv.FormatUint(uint64(fields.Track), 10))

	t.DeleteFrames(frameDisc)
	t.AddTextFrame(frameDisc, id3v2.EncodingUTF8, strconv.Itoa(fields.Disc))

	if nil != art {
		t.DeleteFrames(framePicture)
		t.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     art,
		})
	}

	if err := t.Save(); nil != err {
		return fmt.Errorf("%w: failed to save id3 tag: %v", ErrPersist, err)
	}

	return nil
}

func readID3(path string) (*Summary, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true}) //nolint:exhaustruct
	if nil != err {
		return nil, fmt.Errorf("failed to open id3 tag: %v", err)
	}
	defer t.Close()

	if t.Count() == 0 || t.Title() == "" {
		return nil, ErrTagMissing
	}

	return &Summary{
		Title:      t.Title(),
		Artist:     t.Artist(),
		Album:      t.Album(),
		Disc:       leadingInt(t.GetTextFrame(frameDisc).Text),
		Track:      leadingInt(t.GetTextFrame(frameTrack).Text),
		HasPicture: len(t.GetFrames(framePicture)) > 0,
	}, nil
}
