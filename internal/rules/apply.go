package rules

import (
	"github.com/git-pkgs/deprecier/internal/core"
	"github.com/git-pkgs/deprecier/internal/version"
)

// Result is the action chosen for one version and the rule that chose it.
type Result struct {
	Version *version.Version
	Action  core.Action
	Rule    *Rule
}

// Apply resolves one action per version. Rules are evaluated in order and
// the first rule whose match set contains a version decides it. Results come
// back in input order. A version no rule matches is a configuration error
// reported as *core.UnresolvedVersionError listing every uncovered version.
func Apply(versions []*version.Version, rules []Rule) ([]Result, error) {
	results := make([]Result, len(versions))
	resolved := make([]bool, len(versions))
	remaining := len(versions)

	for i := range rules {
		if remaining == 0 {
			break
		}
		rule := &rules[i]
		matched := rule.Match(versions)
		matched.Each(func(idx int) bool {
			if idx < 0 || idx >= len(versions) || resolved[idx] {
				return true
			}
			results[idx] = Result{Version: versions[idx], Action: rule.Action, Rule: rule}
			resolved[idx] = true
			remaining--
			return true
		})
	}

	if remaining > 0 {
		var missing []string
		for i, ok := range resolved {
			if !ok {
				missing = append(missing, versions[i].String())
			}
		}
		return nil, &core.UnresolvedVersionError{Versions: missing}
	}
	return results, nil
}

// Deprecations keeps the results whose action is deprecate, in order.
func Deprecations(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Action == core.Deprecate {
			out = append(out, r)
		}
	}
	return out
}

// Counts tallies results per action.
func Counts(results []Result) map[core.Action]int {
	counts := make(map[core.Action]int, 2)
	for _, r := range results {
		counts[r.Action]++
	}
	return counts
}
