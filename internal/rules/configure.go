package rules

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/deprecier/internal/core"
)

// Entry is one configured rule: a kind name and its raw options.
//
// In YAML an entry is either the bare kind name or a mapping:
//
//	- deprecate-all
//	- rule: support-latest
//	  options: {count: 2, granularity: major}
type Entry struct {
	Rule    string         `yaml:"rule" json:"rule"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*e = Entry{}
		return node.Decode(&e.Rule)
	}

	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			switch key := node.Content[i]; key.Value {
			case "rule", "options":
			default:
				return fmt.Errorf("line %d: unknown rule entry field %q", key.Line, key.Value)
			}
		}
	}

	type plain Entry
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// DefaultEntries is the policy used when no rules are configured: keep the
// newest major line and unreleased pre-releases, deprecate the rest.
func DefaultEntries() []Entry {
	return []Entry{
		{Rule: string(SupportLatest), Options: map[string]any{"count": 1, "granularity": string(Major)}},
		{Rule: string(SupportPrereleaseIfNotReleased)},
		{Rule: string(DeprecateAll)},
	}
}

// Generate resolves entries against the catalog, preserving their order.
// It fails with *core.UnknownRuleKindError or *core.InvalidRuleOptionsError.
func Generate(entries []Entry) ([]Rule, error) {
	rules := make([]Rule, 0, len(entries))
	for i, entry := range entries {
		kind, ok := Lookup(entry.Rule)
		if !ok {
			return nil, &core.UnknownRuleKindError{Index: i, Kind: entry.Rule}
		}

		raw := newRawOptions(entry.Options)
		options, match, err := catalog[kind].build(raw)
		if err == nil {
			err = raw.unknown()
		}
		if err != nil {
			return nil, invalidOptions(i, kind, err)
		}

		rules = append(rules, Rule{
			Kind:    kind,
			Action:  catalog[kind].action,
			Index:   i,
			Options: options,
			match:   match,
		})
	}
	return rules, nil
}

// EndsWithCatchAll reports whether the last rule matches every version.
func EndsWithCatchAll(rules []Rule) bool {
	return len(rules) > 0 && rules[len(rules)-1].Kind == DeprecateAll
}

func invalidOptions(index int, kind Kind, err error) error {
	var optErr *optionError
	if errors.As(err, &optErr) {
		return &core.InvalidRuleOptionsError{
			Index:  index,
			Kind:   string(kind),
			Option: optErr.option,
			Reason: optErr.reason,
		}
	}
	return &core.InvalidRuleOptionsError{
		Index:  index,
		Kind:   string(kind),
		Reason: fmt.Sprint(err),
	}
}
