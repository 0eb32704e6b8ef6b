// Package rules holds the catalog of deprecation policies, turns configuration
// into executable rules and applies them to a version set.
package rules

import (
	"fmt"

	"github.com/scylladb/go-set/iset"

	"github.com/git-pkgs/deprecier/internal/core"
	"github.com/git-pkgs/deprecier/internal/version"
)

// Kind names a rule in the catalog.
type Kind string

const (
	DeprecateAll                   Kind = "deprecate-all"
	SupportLatest                  Kind = "support-latest"
	SupportPrereleaseIfNotReleased Kind = "support-prerelease-if-not-released"
	SupportRange                   Kind = "support-range"
	DeprecateRange                 Kind = "deprecate-range"
)

// matcher returns the indexes of the versions a rule matches. It sees the whole
// list because several policies are relative to the other versions.
type matcher func(versions []*version.Version) *iset.Set

type definition struct {
	action core.Action
	// build validates options and binds the matcher.
	build func(opts *rawOptions) (any, matcher, error)
}

var catalog = map[Kind]definition{
	DeprecateAll: {
		action: core.Deprecate,
		build: func(*rawOptions) (any, matcher, error) {
			return nil, matchAll, nil
		},
	},
	SupportLatest: {
		action: core.Support,
		build:  buildSupportLatest,
	},
	SupportPrereleaseIfNotReleased: {
		action: core.Support,
		build: func(*rawOptions) (any, matcher, error) {
			return nil, matchUnreleasedPrereleases, nil
		},
	},
	SupportRange: {
		action: core.Support,
		build:  buildRange,
	},
	DeprecateRange: {
		action: core.Deprecate,
		build:  buildRange,
	},
}

// aliases accept the camelCase names used by older configurations.
var aliases = map[string]Kind{
	"deprecateAll":                   DeprecateAll,
	"supportLatest":                  SupportLatest,
	"supportPreReleaseIfNotReleased": SupportPrereleaseIfNotReleased,
	"supportRange":                   SupportRange,
	"deprecateRange":                 DeprecateRange,
}

// Lookup resolves a configured name, including aliases, to a Kind.
func Lookup(name string) (Kind, bool) {
	if _, ok := catalog[Kind(name)]; ok {
		return Kind(name), true
	}
	kind, ok := aliases[name]
	return kind, ok
}

// Kinds lists the catalog in documentation order.
func Kinds() []Kind {
	return []Kind{SupportLatest, SupportPrereleaseIfNotReleased, SupportRange, DeprecateRange, DeprecateAll}
}

// ActionOf returns the declared action of kind.
func ActionOf(kind Kind) core.Action {
	return catalog[kind].action
}

// Rule is a catalog entry bound to validated options. Rules are immutable.
type Rule struct {
	Kind   Kind
	Action core.Action
	// Index is the rule's position in the configuration; lower wins.
	Index int
	// Options is *SupportLatestOptions, *RangeOptions or nil.
	Options any

	match matcher
}

// Match returns the indexes of versions this rule matches.
func (r *Rule) Match(versions []*version.Version) *iset.Set {
	return r.match(versions)
}

func (r *Rule) String() string {
	if s, ok := r.Options.(fmt.Stringer); ok {
		return fmt.Sprintf("%s(%s)", r.Kind, s)
	}
	return string(r.Kind)
}

func matchAll(versions []*version.Version) *iset.Set {
	set := iset.NewWithSize(len(versions))
	for i := range versions {
		set.Add(i)
	}
	return set
}
