package media

import (
	"fmt"
	"strings"
)

type Codec int

const (
	CodecMP3 Codec = iota
	CodecFLAC
	CodecMPA
	CodecOpus
)

var codecs = [...]struct {
	name        string
	ext         string
	fetchFormat string
}{
	CodecMP3:  {name: "mp3", ext: "mp3", fetchFormat: "mp3"},
	CodecFLAC: {name: "flac", ext: "flac", fetchFormat: "flac"},
	CodecMPA:  {name: "mpa", ext: "mpa", fetchFormat: "mp3"},
	CodecOpus: {name: "opus", ext: "opus", fetchFormat: "opus"},
}

func (c Codec) String() string {
	if c < CodecMP3 || c > CodecOpus {
		return "unknown"
	}

	return codecs[c].name
}

func (c Codec) Ext() string {
	return codecs[c].ext
}

// FetchFormat is the audio format the fetch tool transcodes into.
func (c Codec) FetchFormat() string {
	return codecs[c].fetchFormat
}

func ParseCodec(s string) (Codec, error) {
	v := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	for i, c := range codecs {
		if c.name == v {
			return Codec(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unsupported codec %q, expected one of mp3, flac, mpa, opus", ErrInvalidConfig, s)
}
