package fetch

import (
	"fmt"

	"github.com/tidwall/gjson"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// ParseSearchOutput reads the first entry of a flat single JSON search dump.
func ParseSearchOutput(stdout []byte) (Candidate, error) {
	if !gjson.ValidBytes(stdout) {
		return Candidate{}, fmt.Errorf("%w: malformed search output", ErrNetwork)
	}

	first := gjson.GetBytes(stdout, "entries.0")
	if !first.Exists() {
		return Candidate{}, ErrNoResult
	}

	c := Candidate{
		ID:       first.Get("id").String(),
		URL:      first.Get("url").String(),
		Title:    first.Get("title").String(),
		Duration: first.Get("duration").Float(),
	}
	if c.URL == "" && c.ID != "" {
		c.URL = watchURLPrefix + c.ID
	}

	if c.URL == "" {
		return Candidate{}, ErrNoResult
	}

	return c, nil
}
