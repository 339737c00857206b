package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is an immutable tuple of non-negative integers such as 1.2.0.7.
type Version struct {
	segments []uint64
	raw      string
}

// Parse parses name into a Version. It returns false when any segment is
// empty, signed, or not a base-10 integer that fits in 64 bits.
func Parse(name string) (Version, bool) {
	if name == "" {
		return Version{}, false
	}

	fields := strings.Split(name, ".")
	segments := make([]uint64, len(fields))
	for i, f := range fields {
		if f == "" || f[0] < '0' || f[0] > '9' {
			return Version{}, false
		}
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return Version{}, false
		}
		segments[i] = n
	}

	return Version{segments: segments, raw: name}, true
}

// MustParse is like Parse but panics on an invalid name. Intended for tests
// and constants.
func MustParse(name string) Version {
	v, ok := Parse(name)
	if !ok {
		panic(fmt.Sprintf("version: invalid version %q", name))
	}
	return v
}

// FromSegments builds a Version from numeric components.
func FromSegments(segments ...uint64) Version {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = strconv.FormatUint(s, 10)
	}
	return Version{segments: append([]uint64(nil), segments...), raw: strings.Join(parts, ".")}
}

// String returns the name the version was parsed from.
func (v Version) String() string {
	return v.raw
}

// Segments returns a copy of the numeric components.
func (v Version) Segments() []uint64 {
	out := make([]uint64, len(v.segments))
	copy(out, v.segments)
	return out
}

// IsZero reports whether v is the zero Version (never produced by Parse).
func (v Version) IsZero() bool {
	return len(v.segments) == 0
}

// Compare returns -1, 0 or 1 when v is lower than, equal to or higher than
// other. Missing trailing segments count as zero, so 1.2 equals 1.2.0.
func (v Version) Compare(other Version) int {
	n := max(len(v.segments), len(other.segments))
	for i := 0; i < n; i++ {
		a, b := v.segment(i), other.segment(i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// Less reports whether v orders before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func (v Version) segment(i int) uint64 {
	if i < len(v.segments) {
		return v.segments[i]
	}
	return 0
}

// Semver returns the first three segments as a semantic version. Extra
// segments (a fourth "revision" component) are dropped.
func (v Version) Semver() *semver.Version {
	return semver.New(v.segment(0), v.segment(1), v.segment(2), "", "")
}

// Satisfies reports whether the semantic form of v matches c.
func (v Version) Satisfies(c *semver.Constraints) bool {
	if c == nil {
		return true
	}
	return c.Check(v.Semver())
}

// ParseConstraint parses a semver range such as "~1.2" or ">=1.0, <2".
// A leading "v" on bounds is tolerated.
func ParseConstraint(s string) (*semver.Constraints, error) {
	c, err := semver.NewConstraint(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parsing version constraint %q: %w", s, err)
	}
	return c, nil
}
