package rules

import (
	"github.com/scylladb/go-set/iset"
	"github.com/scylladb/go-set/strset"

	"github.com/git-pkgs/deprecier/internal/version"
)

// matchUnreleasedPrereleases matches pre-releases whose MAJOR.MINOR.PATCH has
// no stable release in the set.
func matchUnreleasedPrereleases(versions []*version.Version) *iset.Set {
	released := strset.New()
	for _, v := range versions {
		if !v.IsPrerelease() {
			released.Add(v.Core())
		}
	}

	set := iset.New()
	for i, v := range versions {
		if v.IsPrerelease() && !released.Has(v.Core()) {
			set.Add(i)
		}
	}
	return set
}
