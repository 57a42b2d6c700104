package download

import (
	"github.com/rs/zerolog"

	"github.com/xeptore/tunedl/media"
	"github.com/xeptore/tunedl/tag"
)

type State int

const (
	StatePending State = iota
	StateFetching
	StateFetched
	StateTagging
	StateTagged
	StateTagFailed
	StateFetchFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFetching:
		return "fetching"
	case StateFetched:
		return "fetched"
	case StateTagging:
		return "tagging"
	case StateTagged:
		return "tagged"
	case StateTagFailed:
		return "tag_failed"
	case StateFetchFailed:
		return "fetch_failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal state of one track. It is one of Tagged, TagFailed or FetchFailed.
type Outcome interface {
	State() State
	outcome()
}

type Tagged struct {
	Path string
	// Summary is nil when the file could not be read back.
	Summary *tag.Summary
	Anomaly error
}

type TagFailed struct {
	Path string
	Err  error
}

type FetchFailed struct {
	Err error
	// Canceled is set when the run itself was stopped while the track was in flight.
	Canceled bool
}

func (Tagged) State() State      { return StateTagged }
func (TagFailed) State() State   { return StateTagFailed }
func (FetchFailed) State() State { return StateFetchFailed }

func (Tagged) outcome()      {}
func (TagFailed) outcome()   {}
func (FetchFailed) outcome() {}

type TrackReport struct {
	Index   int
	Chunk   int
	Track   media.Track
	Outcome Outcome
	ArtErr  error
}

type Summary struct {
	Chunks      []int
	Tagged      int
	TagFailed   int
	FetchFailed int
	Canceled    int
	Anomalies   int
	ArtFailures int
	CoverErr    error
	Reports     []TrackReport
}

func (s *Summary) Total() int {
	return len(s.Reports)
}

func (s *Summary) add(r TrackReport) {
	switch o := r.Outcome.(type) {
	case Tagged:
		s.Tagged++
		if nil != o.Anomaly {
			s.Anomalies++
		}
	case TagFailed:
		s.TagFailed++
	case FetchFailed:
		s.FetchFailed++
		if o.Canceled {
			s.Canceled++
		}
	default:
		panic("unexpected track outcome")
	}

	if nil != r.ArtErr {
		s.ArtFailures++
	}

	s.Reports = append(s.Reports, r)
}

func (s *Summary) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Ints("chunks", s.Chunks).
		Int("total", s.Total()).
		Int("tagged", s.Tagged).
		Int("tag_failed", s.TagFailed).
		Int("fetch_failed", s.FetchFailed).
		Int("canceled", s.Canceled).
		Int("anomalies", s.Anomalies).
		Int("art_failures", s.ArtFailures)
}
