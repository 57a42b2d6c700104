package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes b next to path and renames it into place, so readers only ever see
// the previous or the complete new content.
func WriteFileAtomic(path string, b []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if nil != err {
		return fmt.Errorf("failed to create temporary file: %v", err)
	}
	tmpPath := f.Name()

	closed := false
	defer func() {
		if nil == err {
			return
		}

		if !closed {
			if closeErr := f.Close(); nil != closeErr {
				err = errors.Join(err, fmt.Errorf("failed to close temporary file: %v", closeErr))
			}
		}

		if removeErr := os.Remove(tmpPath); nil != removeErr && !errors.Is(removeErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("failed to remove temporary file: %v", removeErr))
		}
	}()

	if _, err := f.Write(b); nil != err {
		return fmt.Errorf("failed to write temporary file: %v", err)
	}

	if err := f.Sync(); nil != err {
		return fmt.Errorf("failed to sync temporary file: %v", err)
	}

	if err := f.Chmod(0o644); nil != err {
		return fmt.Errorf("failed to change temporary file mode: %v", err)
	}

	closed = true
	if err := f.Close(); nil != err {
		return fmt.Errorf("failed to close temporary file: %v", err)
	}

	if err := os.Rename(tmpPath, path); nil != err {
		return fmt.Errorf("failed to move temporary file into place: %v", err)
	}

	return nil
}

// PartPath is the in-progress name used while content for path is being produced.
func PartPath(path, id string) string {
	return path + ".part-" + id
}

// RemovePart deletes the in-progress file part and every file derived from it, such as part.webm
// or part.mp3. In-progress files of other writers to the same destination are left alone.
func RemovePart(part string) error {
	matches, err := filepath.Glob(globEscape(part) + "*")
	if nil != err {
		return fmt.Errorf("failed to list partial files: %v", err)
	}

	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); nil != err && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove partial file %s: %v", m, err))
		}
	}

	return errors.Join(errs...)
}

func globEscape(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}

	return string(out)
}
