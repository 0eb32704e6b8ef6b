package rules

import (
	"fmt"
	"sort"

	"github.com/scylladb/go-set/iset"

	"github.com/git-pkgs/deprecier/internal/version"
)

func buildSupportLatest(raw *rawOptions) (any, matcher, error) {
	count, err := raw.intValue("count", 1)
	if err != nil {
		return nil, nil, err
	}
	if count < 1 {
		return nil, nil, &optionError{"count", fmt.Sprintf("must be a positive integer, got %d", count)}
	}

	granularity, err := raw.stringValue("granularity", string(Major))
	if err != nil {
		return nil, nil, err
	}
	switch Granularity(granularity) {
	case Major, Minor:
	default:
		return nil, nil, &optionError{"granularity", fmt.Sprintf("must be %q or %q, got %q", Major, Minor, granularity)}
	}

	ignorePrereleases, err := raw.boolValue("ignorePrereleases", false)
	if err != nil {
		return nil, nil, err
	}

	opts := &SupportLatestOptions{
		Count:             count,
		Granularity:       Granularity(granularity),
		IgnorePrereleases: ignorePrereleases,
	}
	return opts, matchLatest(*opts), nil
}

// releaseLine identifies a group: the major line, or the major.minor line.
type releaseLine struct {
	major, minor uint64
}

func (l releaseLine) less(o releaseLine) bool {
	if l.major != o.major {
		return l.major < o.major
	}
	return l.minor < o.minor
}

// matchLatest matches every version belonging to the Count highest release lines.
func matchLatest(opts SupportLatestOptions) matcher {
	lineOf := func(v *version.Version) releaseLine {
		if opts.Granularity == Minor {
			return releaseLine{v.Major(), v.Minor()}
		}
		return releaseLine{major: v.Major()}
	}

	return func(versions []*version.Version) *iset.Set {
		hasStable := make(map[releaseLine]bool)
		for _, v := range versions {
			line := lineOf(v)
			hasStable[line] = hasStable[line] || !v.IsPrerelease()
		}

		lines := make([]releaseLine, 0, len(hasStable))
		for line := range hasStable {
			if opts.IgnorePrereleases && !hasStable[line] {
				continue
			}
			lines = append(lines, line)
		}
		sort.Slice(lines, func(i, j int) bool {
			return lines[j].less(lines[i])
		})
		if len(lines) > opts.Count {
			lines = lines[:opts.Count]
		}

		supported := make(map[releaseLine]bool, len(lines))
		for _, line := range lines {
			supported[line] = true
		}

		set := iset.New()
		for i, v := range versions {
			if supported[lineOf(v)] {
				set.Add(i)
			}
		}
		return set
	}
}
