package catalog

import (
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/xeptore/tunedl/media"
)

func TrackFromFull(t *spotify.FullTrack) media.Track {
	return trackFromFull(t)
}

func Classify(err error) error {
	return classify(err)
}

func (s *Spotify) SetRetryBase(d time.Duration) {
	s.retryBase = d
}
