package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/xeptore/tunedl/unit"
)

var (
	ErrEmptyBody = errors.New("unexpected empty response body")
	ErrTooLarge  = errors.New("response body exceeds size limit")
)

type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return "unexpected status code " + strconv.Itoa(e.Code)
	}

	return fmt.Sprintf("unexpected status code %d with body: %s", e.Code, string(e.Body))
}

// Retryable reports whether repeating the same request may succeed.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// CheckStatus returns a *StatusError carrying a body excerpt for any non 2xx response.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512*unit.Byte))

	return &StatusError{Code: resp.StatusCode, Body: excerpt}
}

// ReadResponseBody reads at most limit bytes and fails with ErrTooLarge beyond that.
func ReadResponseBody(resp *http.Response, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if nil != err {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	switch l := int64(len(b)); {
	case l == 0:
		return nil, ErrEmptyBody
	case l > limit:
		return nil, ErrTooLarge
	}

	return b, nil
}
