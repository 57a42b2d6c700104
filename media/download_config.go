package media

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xeptore/tunedl/fs"
)

const DefaultParallelism = 10

// DownloadConfig is validated once on construction and is safe to copy into every worker.
type DownloadConfig struct {
	Root        string
	Codec       Codec
	Bitrate     Bitrate
	Parallelism int
}

func NewDownloadConfig(root, codec, bitrate string, parallelism int) (DownloadConfig, error) {
	if strings.TrimSpace(root) == "" {
		return DownloadConfig{}, fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}

	c, err := ParseCodec(codec)
	if nil != err {
		return DownloadConfig{}, err
	}

	b, err := ParseBitrate(bitrate)
	if nil != err {
		return DownloadConfig{}, err
	}

	switch {
	case parallelism == 0:
		parallelism = DefaultParallelism
	case parallelism < 0:
		return DownloadConfig{}, fmt.Errorf("%w: parallelism must be at least 1, got %d", ErrInvalidConfig, parallelism)
	}

	return DownloadConfig{
		Root:        root,
		Codec:       c,
		Bitrate:     b,
		Parallelism: parallelism,
	}, nil
}

func (c DownloadConfig) Dir() fs.Dir {
	return fs.DirFrom(c.Root)
}

func (c DownloadConfig) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("root", c.Root).
		Str("codec", c.Codec.String()).
		Str("bitrate", c.Bitrate.String()).
		Int("parallelism", c.Parallelism)
}
