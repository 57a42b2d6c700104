package fetch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tunedl/fetch"
)

func TestParseSearchOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		stdout  string
		want    fetch.Candidate
		wantErr error
	}{
		{
			name:   "first entry with url",
			stdout: `{"id":"ytsearch1:q","entries":[{"id":"abc","url":"https://www.youtube.com/watch?v=abc","title":"Song","duration":201.0},{"id":"def"}]}`,
			want: fetch.Candidate{
				ID:       "abc",
				URL:      "https://www.youtube.com/watch?v=abc",
				Title:    "Song",
				Duration: 201,
			},
		},
		{
			name:   "url built from id",
			stdout: `{"entries":[{"id":"xyz","title":"Other"}]}`,
			want: fetch.Candidate{
				ID:    "xyz",
				URL:   "https://www.youtube.com/watch?v=xyz",
				Title: "Other",
			},
		},
		{
			name:    "no entries",
			stdout:  `{"entries":[]}`,
			wantErr: fetch.ErrNoResult,
		},
		{
			name:    "entry without id or url",
			stdout:  `{"entries":[{"title":"ghost"}]}`,
			wantErr: fetch.ErrNoResult,
		},
		{
			name:    "not json",
			stdout:  `ERROR: unable to download webpage`,
			wantErr: fetch.ErrNetwork,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := fetch.ParseSearchOutput([]byte(test.stdout))
			if nil != test.wantErr {
				require.ErrorIs(t, err, test.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}
