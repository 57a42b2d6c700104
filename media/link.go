package media

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

type LinkKind int

const (
	LinkKindTrack LinkKind = iota
	LinkKindAlbum
	LinkKindPlaylist
)

func (k LinkKind) String() string {
	switch k {
	case LinkKindTrack:
		return "track"
	case LinkKindAlbum:
		return "album"
	case LinkKindPlaylist:
		return "playlist"
	}

	return "unknown"
}

func (k LinkKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *LinkKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); nil != err {
		return fmt.Errorf("failed to decode link kind: %v", err)
	}

	parsed, err := ParseLinkKind(s)
	if nil != err {
		return err
	}
	*k = parsed

	return nil
}

func ParseLinkKind(s string) (LinkKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "track":
		return LinkKindTrack, nil
	case "album":
		return LinkKindAlbum, nil
	case "playlist":
		return LinkKindPlaylist, nil
	default:
		return 0, fmt.Errorf("%w: unsupported link kind %q", ErrInvalidConfig, s)
	}
}

type Link struct {
	Kind LinkKind
	ID   string
}

func (l Link) String() string {
	return l.Kind.String() + ":" + l.ID
}

// ParseLink accepts open.spotify.com URLs, optionally with a locale path prefix, and spotify:<kind>:<id> URIs.
func ParseLink(s string) (Link, error) {
	s = strings.TrimSpace(s)

	if rest, ok := strings.CutPrefix(s, "spotify:"); ok {
		kind, id, ok := strings.Cut(rest, ":")
		if !ok {
			return Link{}, fmt.Errorf("%w: malformed uri %q", ErrInvalidConfig, s)
		}

		return NewLink(kind, id)
	}

	u, err := url.Parse(s)
	if nil != err {
		return Link{}, fmt.Errorf("%w: malformed link %q: %v", ErrInvalidConfig, s, err)
	}

	if u.Host != "open.spotify.com" && u.Host != "play.spotify.com" {
		return Link{}, fmt.Errorf("%w: unsupported link host %q", ErrInvalidConfig, u.Host)
	}

	switch parts := strings.Split(strings.Trim(u.Path, "/"), "/"); len(parts) {
	case 2:
		return NewLink(parts[0], parts[1])
	case 3:
		if !strings.HasPrefix(parts[0], "intl-") {
			return Link{}, fmt.Errorf("%w: unexpected link path %q", ErrInvalidConfig, u.Path)
		}

		return NewLink(parts[1], parts[2])
	default:
		return Link{}, fmt.Errorf("%w: unexpected link path %q", ErrInvalidConfig, u.Path)
	}
}

func NewLink(kind, id string) (Link, error) {
	k, err := ParseLinkKind(kind)
	if nil != err {
		return Link{}, err
	}

	if id == "" || strings.ContainsAny(id, "/:?") {
		return Link{}, fmt.Errorf("%w: invalid %s id %q", ErrInvalidConfig, k, id)
	}

	return Link{Kind: k, ID: id}, nil
}
