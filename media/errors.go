package media

import (
	"errors"
)

// ErrInvalidConfig marks every rejection of user supplied settings or input. Callers treat it as fatal.
var ErrInvalidConfig = errors.New("invalid configuration")
