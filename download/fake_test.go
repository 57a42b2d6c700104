package download_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/tunedl/fetch"
	"github.com/xeptore/tunedl/media"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0xFF, 0xD9}

func mpegAudio() []byte {
	frame := append([]byte{0xFF, 0xFB, 0x90, 0x64}, bytes.Repeat([]byte{0x00}, 413)...)
	return bytes.Repeat(frame, 4)
}

type fakeFetcher struct {
	delay   time.Duration
	content []byte
	// fetchErr is returned after the destination has already been written.
	fetchErr error

	mux     sync.Mutex
	fail    map[string]error
	panicOn string

	searches    atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{content: mpegAudio(), fail: map[string]error{}} //nolint:exhaustruct
}

func (f *fakeFetcher) failOn(query string, err error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.fail[query] = err
}

func (f *fakeFetcher) Search(ctx context.Context, query string) (fetch.Candidate, error) {
	f.searches.Add(1)
	if err := ctx.Err(); nil != err {
		return fetch.Candidate{}, err
	}

	if query == f.panicOn {
		panic("search exploded")
	}

	f.mux.Lock()
	err := f.fail[query]
	f.mux.Unlock()
	if nil != err {
		return fetch.Candidate{}, err
	}

	return fetch.Candidate{ID: query, URL: "https://example.com/" + query, Title: query}, nil //nolint:exhaustruct
}

func (f *fakeFetcher) Fetch(ctx context.Context, _ fetch.Candidate, _ media.Codec, _ media.Bitrate, dest string) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delay):
		}
	}

	if err := os.WriteFile(dest, f.content, 0o600); nil != err {
		return err
	}

	return f.fetchErr
}

type fakeCovers struct {
	err   error
	calls atomic.Int32
}

func (c *fakeCovers) Get(context.Context, zerolog.Logger, string) ([]byte, error) {
	c.calls.Add(1)
	if nil != c.err {
		return nil, c.err
	}

	return jpegBytes, nil
}

var errCoverDown = errors.New("cover host down")
