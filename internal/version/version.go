// Package version parses and orders semantic versions.
//
// Equality and ordering follow SemVer 2.0 precedence: build metadata is carried
// for display only and never affects comparison.
package version

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/git-pkgs/deprecier/internal/core"
)

// Version is an immutable parsed semantic version.
type Version struct {
	raw string
	sv  *semver.Version
}

// Identifier is one dot-separated pre-release component.
type Identifier struct {
	Value   string
	Numeric bool
	Number  uint64 // valid when Numeric and Value fits in a uint64
}

// maxUint64Digits is the longest all-digit identifier that always fits in a uint64.
const maxUint64Digits = 19

// Parse parses raw as MAJOR.MINOR.PATCH[-prerelease][+build]. A single leading
// "v" is accepted, matching npm.
func Parse(raw string) (*Version, error) {
	sv, err := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(raw), "v"))
	if err != nil {
		return nil, &core.InvalidVersionError{Raw: raw, Err: err}
	}
	return &Version{raw: raw, sv: sv}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(raw string) *Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseAll parses every string, failing on the first malformed entry.
// The result keeps the input order.
func ParseAll(raws []string) ([]*Version, error) {
	versions := make([]*Version, 0, len(raws))
	for _, raw := range raws {
		v, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (v *Version) Major() uint64 { return v.sv.Major() }
func (v *Version) Minor() uint64 { return v.sv.Minor() }
func (v *Version) Patch() uint64 { return v.sv.Patch() }

// Original returns the string the version was parsed from.
func (v *Version) Original() string { return v.raw }

// String returns the normalized form, including build metadata.
func (v *Version) String() string { return v.sv.String() }

// IsPrerelease reports whether the version has pre-release identifiers.
func (v *Version) IsPrerelease() bool { return v.sv.Prerelease() != "" }

// Prerelease returns the pre-release identifiers, or nil.
func (v *Version) Prerelease() []string {
	return splitIdentifiers(v.sv.Prerelease())
}

// PrereleaseIdentifiers returns the pre-release identifiers classified as
// numeric or alphanumeric.
func (v *Version) PrereleaseIdentifiers() []Identifier {
	parts := v.Prerelease()
	if parts == nil {
		return nil
	}
	ids := make([]Identifier, len(parts))
	for i, p := range parts {
		ids[i] = Identifier{Value: p, Numeric: isDigits(p)}
		if ids[i].Numeric {
			ids[i].Number, _ = strconv.ParseUint(p, 10, 64)
		}
	}
	return ids
}

// Build returns the build-metadata identifiers, or nil.
func (v *Version) Build() []string {
	return splitIdentifiers(v.sv.Metadata())
}

// Core returns MAJOR.MINOR.PATCH without pre-release or build suffixes.
func (v *Version) Core() string {
	return strconv.FormatUint(v.Major(), 10) + "." +
		strconv.FormatUint(v.Minor(), 10) + "." +
		strconv.FormatUint(v.Patch(), 10)
}

// Compare returns -1, 0 or 1 when v is less than, equal to or greater than o.
func (v *Version) Compare(o *Version) int {
	if !v.hasLongNumber() && !o.hasLongNumber() {
		return v.sv.Compare(o.sv)
	}
	if v.Core() != o.Core() {
		return semverCore(v).Compare(semverCore(o))
	}
	return comparePrerelease(v.Prerelease(), o.Prerelease())
}

// hasLongNumber reports whether a numeric pre-release identifier may overflow
// a uint64. semver falls back to string order for those.
func (v *Version) hasLongNumber() bool {
	for _, p := range v.Prerelease() {
		if len(p) > maxUint64Digits && isDigits(p) {
			return true
		}
	}
	return false
}

// semverCore returns v's MAJOR.MINOR.PATCH without pre-release or build.
func semverCore(v *Version) *semver.Version {
	return semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
}

// comparePrerelease orders two pre-release identifier lists of the same core.
// An empty list is a release and sorts last.
func comparePrerelease(a, b []string) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return 1
	case len(b) == 0:
		return -1
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareIdentifier(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// compareIdentifier orders numeric identifiers by value without parsing them,
// numeric before alphanumeric, and alphanumeric ones in ASCII order.
func compareIdentifier(a, b string) int {
	an, bn := isDigits(a), isDigits(b)
	switch {
	case an && bn:
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	case an:
		return -1
	case bn:
		return 1
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Equal reports precedence equality; build metadata is ignored.
func (v *Version) Equal(o *Version) bool { return v.Compare(o) == 0 }

// LessThan reports whether v has lower precedence than o.
func (v *Version) LessThan(o *Version) bool { return v.Compare(o) < 0 }

// Compare returns -1, 0 or 1 when a is less than, equal to or greater than b.
func Compare(a, b *Version) int {
	return a.Compare(b)
}

// Sort sorts versions in ascending precedence. Equal versions keep their order.
func Sort(versions []*Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].LessThan(versions[j])
	})
}

func splitIdentifiers(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}
