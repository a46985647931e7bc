// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package ngx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrVersionFormat is returned when a version string can't be parsed.
var ErrVersionFormat = errors.New("malformed version string")

// Version describes a vendor SDK module version. The zero value
// is the oldest possible version.
type Version struct {
	Major    uint32
	Minor    uint32
	Build    uint32
	Revision uint32

	// DriverOverride marks a version that was forced by the
	// driver instead of read from the module loaded by the game.
	DriverOverride bool
}

// IsOlderThan reports whether test is a strictly newer release than v.
// DriverOverride does not take part in the ordering.
func (v Version) IsOlderThan(test Version) bool {
	switch {
	case test.Major != v.Major:
		return test.Major > v.Major
	case test.Minor != v.Minor:
		return test.Minor > v.Minor
	case test.Build != v.Build:
		return test.Build > v.Build
	}
	return test.Revision > v.Revision
}

// IsZero reports whether the version was never established.
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0 && v.Build == 0 && v.Revision == 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// ParseVersion parses "major.minor.build.revision". Resource style
// strings ("3, 7, 10, 0") are accepted too, missing trailing parts are zero.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, ErrVersionFormat
	}

	sep := "."
	if strings.Contains(s, ",") {
		sep = ","
	}

	parts := strings.Split(s, sep)
	if len(parts) > 4 {
		return Version{}, fmt.Errorf("%w: %q has %d parts", ErrVersionFormat, s, len(parts))
	}

	var nums [4]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %s", ErrVersionFormat, s, err)
		}
		nums[i] = uint32(n)
	}

	return Version{
		Major:    nums[0],
		Minor:    nums[1],
		Build:    nums[2],
		Revision: nums[3],
	}, nil
}
