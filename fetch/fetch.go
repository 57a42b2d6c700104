package fetch

import (
	"errors"
)

var (
	ErrNoResult          = errors.New("no matching audio found")
	ErrNetwork           = errors.New("audio source unreachable")
	ErrUnsupportedFormat = errors.New("audio format not produced")
)

// Candidate identifies one search hit that can be fetched.
type Candidate struct {
	ID       string
	URL      string
	Title    string
	Duration float64
}
