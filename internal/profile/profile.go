// Package profile defines the three performance profiles and their
// numeric and textual encodings.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParseProfile is returned by Parse for unrecognized profile names.
var ErrParseProfile = errors.New("unrecognized profile")

// Profile is a coarse performance mode controlling fan aggressiveness and
// the CPU power ceiling.
type Profile uint8

const (
	Normal Profile = iota
	Boost
	Silent
)

// All lists the profiles in stepping order.
var All = []Profile{Normal, Boost, Silent}

var names = map[Profile]string{
	Normal: "normal",
	Boost:  "boost",
	Silent: "silent",
}

// Decode maps a stored numeric code to a Profile. Unknown codes are Normal.
func Decode(n byte) Profile {
	switch Profile(n) {
	case Boost:
		return Boost
	case Silent:
		return Silent
	default:
		return Normal
	}
}

// Encode returns the numeric code written to the fan control endpoint.
func (p Profile) Encode() byte {
	return byte(Decode(byte(p)))
}

// Parse matches s case-insensitively against the profile names.
func Parse(s string) (Profile, error) {
	needle := strings.ToLower(s)
	for _, p := range All {
		if names[p] == needle {
			return p, nil
		}
	}

	return Normal, fmt.Errorf("%w: %q", ErrParseProfile, s)
}

// Next returns the cyclic successor: normal, boost, silent, normal. Any
// out-of-range value wraps to Normal.
func (p Profile) Next() Profile {
	switch p {
	case Normal:
		return Boost
	case Boost:
		return Silent
	default:
		return Normal
	}
}

func (p Profile) String() string {
	return names[Decode(byte(p))]
}

// MarshalText implements encoding.TextMarshaler.
func (p Profile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Profile) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed

	return nil
}
