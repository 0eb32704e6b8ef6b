package rules

import (
	"fmt"
	"strings"

	"github.com/git-pkgs/vers"
	"github.com/scylladb/go-set/iset"

	"github.com/git-pkgs/deprecier/internal/version"
)

func buildRange(raw *rawOptions) (any, matcher, error) {
	expr, err := raw.requiredString("range")
	if err != nil {
		return nil, nil, err
	}

	r, err := vers.ParseNative(expr, "npm")
	if err != nil {
		return nil, nil, &optionError{"range", fmt.Sprintf("is not a valid npm range: %v", err)}
	}

	return &RangeOptions{Range: expr}, matchRange(r), nil
}

func matchRange(r *vers.Range) matcher {
	return func(versions []*version.Version) *iset.Set {
		set := iset.New()
		for i, v := range versions {
			if r.Contains(precedence(v)) {
				set.Add(i)
			}
		}
		return set
	}
}

// precedence renders v without build metadata so range checks ignore it.
func precedence(v *version.Version) string {
	if pre := v.Prerelease(); pre != nil {
		return v.Core() + "-" + strings.Join(pre, ".")
	}
	return v.Core()
}
