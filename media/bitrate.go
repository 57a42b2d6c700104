package media

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type Bitrate int

const (
	BitrateWorst Bitrate = iota
	BitrateWorse
	BitratePoor
	BitrateLow
	BitrateMedium
	BitrateGood
	BitrateHigh
	BitrateBest
)

type bitrateTier struct {
	name string
	kbps int
}

func (t bitrateTier) label() string {
	return lo.Ternary(t.kbps > 0, strconv.Itoa(t.kbps), t.name)
}

var bitrates = [...]bitrateTier{
	BitrateWorst:  {name: "worst"},
	BitrateWorse:  {name: "worse", kbps: 32},
	BitratePoor:   {name: "poor", kbps: 96},
	BitrateLow:    {name: "low", kbps: 128},
	BitrateMedium: {name: "medium", kbps: 192},
	BitrateGood:   {name: "good", kbps: 256},
	BitrateHigh:   {name: "high", kbps: 320},
	BitrateBest:   {name: "best"},
}

func (b Bitrate) valid() bool {
	return b >= BitrateWorst && b <= BitrateBest
}

func (b Bitrate) String() string {
	if !b.valid() {
		return "unknown"
	}

	return bitrates[b].label()
}

// Kbps returns the nominal bitrate. Worst and Best have none, the fetch tool picks its own extremes.
func (b Bitrate) Kbps() (int, bool) {
	if !b.valid() {
		return 0, false
	}

	kbps := bitrates[b].kbps

	return kbps, kbps > 0
}

// Quality renders the tier as an audio quality argument of the fetch tool, either a VBR level or a fixed rate.
func (b Bitrate) Quality() string {
	switch b {
	case BitrateWorst:
		return "10"
	case BitrateBest:
		return "0"
	default:
		kbps, _ := b.Kbps()
		return strconv.Itoa(kbps) + "K"
	}
}

func ParseBitrate(s string) (Bitrate, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSuffix(strings.TrimSuffix(v, "kbps"), "k")

	for i, b := range bitrates {
		if b.name == v || (b.kbps > 0 && strconv.Itoa(b.kbps) == v) {
			return Bitrate(i), nil
		}
	}

	supported := lo.Map(bitrates[:], func(t bitrateTier, _ int) string { return t.label() })

	return 0, fmt.Errorf("%w: unsupported bitrate %q, expected one of %s", ErrInvalidConfig, s, strings.Join(supported, ", "))
}
