package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a parsed "major.minor.patch" version.
type SemVer struct {
	Major int
	Minor int
	Patch int
}

// ParseSemVer parses a version string of the form "1.2.3", tolerating a
// leading "v" and trailing pre-release or build suffixes ("v1.2.3-rc.1").
func ParseSemVer(s string) (SemVer, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexAny(trimmed, "-+"); i >= 0 {
		trimmed = trimmed[:i]
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return SemVer{}, fmt.Errorf("invalid version %q", s)
	}

	var v SemVer
	var err error
	if v.Major, err = strconv.Atoi(parts[0]); err != nil {
		return SemVer{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	if v.Minor, err = strconv.Atoi(parts[1]); err != nil {
		return SemVer{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	if len(parts) == 3 {
		if v.Patch, err = strconv.Atoi(parts[2]); err != nil {
			return SemVer{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
	}
	return v, nil
}

// String returns the canonical "major.minor.patch" form.
func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether v >= other.
func (v SemVer) AtLeast(other SemVer) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	return v.Patch >= other.Patch
}
