package rules

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Granularity selects how support-latest groups versions.
type Granularity string

const (
	Major Granularity = "major"
	Minor Granularity = "minor"
)

// SupportLatestOptions configures support-latest.
type SupportLatestOptions struct {
	// Count is how many of the highest groups stay supported.
	Count int
	// Granularity groups versions by major or by major.minor.
	Granularity Granularity
	// IgnorePrereleases skips groups made only of pre-release versions.
	IgnorePrereleases bool
}

func (o SupportLatestOptions) String() string {
	s := fmt.Sprintf("count=%d, granularity=%s", o.Count, o.Granularity)
	if o.IgnorePrereleases {
		s += ", ignorePrereleases=true"
	}
	return s
}

// RangeOptions configures support-range and deprecate-range.
type RangeOptions struct {
	// Range is an npm range expression such as ">=1.2.0 <2.0.0" or "^3.1.0".
	Range string
}

func (o RangeOptions) String() string {
	return fmt.Sprintf("range=%q", o.Range)
}

// optionError is a validation failure before it is attached to a rule position.
type optionError struct {
	option string
	reason string
}

func (e *optionError) Error() string {
	if e.option == "" {
		return e.reason
	}
	return fmt.Sprintf("option %q %s", e.option, e.reason)
}

// rawOptions reads loosely typed option values and tracks which keys were consumed.
type rawOptions struct {
	values map[string]any
	used   map[string]bool
}

func newRawOptions(values map[string]any) *rawOptions {
	return &rawOptions{values: values, used: make(map[string]bool)}
}

func (o *rawOptions) lookup(name string) (any, bool) {
	o.used[name] = true
	v, ok := o.values[name]
	if ok && v == nil {
		return nil, false
	}
	return v, ok
}

func (o *rawOptions) intValue(name string, def int) (int, error) {
	v, ok := o.lookup(name)
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, &optionError{name, "is out of range"}
		}
		return int(n), nil
	case uint64:
		if n > math.MaxInt32 {
			return 0, &optionError{name, "is out of range"}
		}
		return int(n), nil
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) || n != math.Trunc(n) {
			return 0, &optionError{name, fmt.Sprintf("must be an integer, got %v", n)}
		}
		// out-of-range float to int conversion is implementation-defined
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, &optionError{name, "is out of range"}
		}
		return int(n), nil
	}
	return 0, &optionError{name, fmt.Sprintf("must be an integer, got %T", v)}
}

func (o *rawOptions) stringValue(name, def string) (string, error) {
	v, ok := o.lookup(name)
	if !ok {
		return def, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", &optionError{name, fmt.Sprintf("must be a string, got %T", v)}
	}
	return s, nil
}

func (o *rawOptions) requiredString(name string) (string, error) {
	s, err := o.stringValue(name, "")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", &optionError{name, "is required"}
	}
	return s, nil
}

func (o *rawOptions) boolValue(name string, def bool) (bool, error) {
	v, ok := o.lookup(name)
	if !ok {
		return def, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, &optionError{name, fmt.Sprintf("must be a boolean, got %T", v)}
	}
	return b, nil
}

// unknown fails on any option key the rule did not read.
func (o *rawOptions) unknown() error {
	var extra []string
	for k := range o.values {
		if !o.used[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return &optionError{extra[0], "is not supported"}
}
