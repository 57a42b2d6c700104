package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotDir = errors.New("path exists but is not a directory")

const CoverExt = "jpeg"

// Dir is an immutable directory cursor. Join derives a new value, so copies handed to
// concurrent workers never observe each other's descents.
type Dir struct {
	path string
}

func DirFrom(p string) Dir {
	return Dir{path: filepath.Clean(p)}
}

func (d Dir) Path() string {
	return d.path
}

func (d Dir) String() string {
	return d.path
}

// Join descends into a single child segment. Path separators inside name never escape the directory.
func (d Dir) Join(name string) Dir {
	return Dir{path: filepath.Join(d.path, SafeSegment(name))}
}

// Resolve returns the absolute path of the directory. It fails when the path cannot be made absolute
// or is occupied by something other than a directory.
func (d Dir) Resolve() (string, error) {
	abs, err := filepath.Abs(d.path)
	if nil != err {
		return "", fmt.Errorf("failed to resolve absolute path of %s: %v", d.path, err)
	}

	switch info, err := os.Stat(abs); {
	case nil == err && !info.IsDir():
		return "", fmt.Errorf("%s: %w", abs, ErrNotDir)
	case nil != err && !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("failed to stat %s: %v", abs, err)
	}

	return abs, nil
}

// Ensure creates the directory and its parents. An already existing directory is not an error.
func (d Dir) Ensure() error {
	if err := os.MkdirAll(d.path, 0o755); nil != err {
		return fmt.Errorf("failed to create directory %s: %v", d.path, err)
	}

	return nil
}

func (d Dir) Track(title, ext string) TrackFile {
	return TrackFile{Path: filepath.Join(d.path, SafeSegment(title)+"."+ext)}
}

func (d Dir) Cover(name string) Cover {
	return Cover{Path: filepath.Join(d.path, Sanitize(name)+"."+CoverExt)}
}

type TrackFile struct {
	Path string
}

func (t TrackFile) Exists() (bool, error) {
	return fileExists(t.Path)
}

func (t TrackFile) Remove() error {
	if err := os.Remove(t.Path); nil != err && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove track file: %v", err)
	}

	return nil
}

type Cover struct {
	Path string
}

func (c Cover) Exists() (bool, error) {
	return fileExists(c.Path)
}

func (c Cover) Write(b []byte) error {
	if err := WriteFileAtomic(c.Path, b); nil != err {
		return fmt.Errorf("failed to write cover file: %w", err)
	}

	return nil
}

func fileExists(path string) (bool, error) {
	if _, err := os.Stat(path); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to stat file: %v", err)
	}

	return true, nil
}

var coverNameReplacer = strings.NewReplacer(
	"/", "",
	"<", "",
	">", "",
	`"`, "",
	"(", "",
	")", "",
	" ", "",
)

// Sanitize strips the characters that are unsafe in cover file names. It is idempotent.
func Sanitize(name string) string {
	return coverNameReplacer.Replace(name)
}

var segmentReplacer = strings.NewReplacer(
	"/", "_",
	`\`, "_",
	"\x00", "",
)

// SafeSegment keeps name intact except for what would turn it into more than one path element.
func SafeSegment(name string) string {
	s := segmentReplacer.Replace(name)
	switch s {
	case "", ".", "..":
		return "_"
	default:
		return s
	}
}
