package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidVersionFormat is returned when a version string is not valid semver.
	ErrInvalidVersionFormat = errors.New("invalid version format")

	// ErrUnknownRuleKind is returned when configuration names a rule that does not exist.
	ErrUnknownRuleKind = errors.New("unknown rule kind")

	// ErrInvalidRuleOptions is returned when a rule's options fail validation.
	ErrInvalidRuleOptions = errors.New("invalid rule options")

	// ErrUnresolvedVersion is returned when no rule matched a version.
	ErrUnresolvedVersion = errors.New("unresolved version")

	// ErrAuthentication is returned when the registry session cannot be established.
	ErrAuthentication = errors.New("authentication failed")

	// ErrDeprecation is returned when a single deprecation call fails.
	ErrDeprecation = errors.New("deprecation failed")

	// ErrNotConfigured is returned when Publish runs before VerifyConditions.
	ErrNotConfigured = errors.New("rules not configured")
)

// InvalidVersionError matches ErrInvalidVersionFormat and unwraps to the
// parser's error.
type InvalidVersionError struct {
	Raw string
	Err error
}

func (e *InvalidVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid version %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("invalid version %q", e.Raw)
}

func (e *InvalidVersionError) Is(target error) bool {
	return target == ErrInvalidVersionFormat
}

func (e *InvalidVersionError) Unwrap() error {
	return e.Err
}

// UnknownRuleKindError wraps ErrUnknownRuleKind with the configuration position.
type UnknownRuleKindError struct {
	Index int
	Kind  string
}

func (e *UnknownRuleKindError) Error() string {
	return fmt.Sprintf("rules[%d]: unknown rule kind %q", e.Index, e.Kind)
}

func (e *UnknownRuleKindError) Unwrap() error {
	return ErrUnknownRuleKind
}

// InvalidRuleOptionsError wraps ErrInvalidRuleOptions with the failing option.
type InvalidRuleOptionsError struct {
	Index  int
	Kind   string
	Option string
	Reason string
}

func (e *InvalidRuleOptionsError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("rules[%d] (%s): %s", e.Index, e.Kind, e.Reason)
	}
	return fmt.Sprintf("rules[%d] (%s): option %q %s", e.Index, e.Kind, e.Option, e.Reason)
}

func (e *InvalidRuleOptionsError) Unwrap() error {
	return ErrInvalidRuleOptions
}

// UnresolvedVersionError lists the versions no rule matched.
type UnresolvedVersionError struct {
	Versions []string
}

func (e *UnresolvedVersionError) Error() string {
	return fmt.Sprintf("no rule matched versions %s; add a catch-all rule such as deprecate-all",
		strings.Join(e.Versions, ", "))
}

func (e *UnresolvedVersionError) Unwrap() error {
	return ErrUnresolvedVersion
}

// AuthenticationError wraps ErrAuthentication with the registry that refused the session.
type AuthenticationError struct {
	Registry string
	Err      error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authenticating against %s: %v", e.Registry, e.Err)
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// DeprecationError records the failure of one deprecation call.
type DeprecationError struct {
	Version string
	Err     error
}

func (e *DeprecationError) Error() string {
	return fmt.Sprintf("deprecating %s: %v", e.Version, e.Err)
}

func (e *DeprecationError) Is(target error) bool {
	return target == ErrDeprecation
}

func (e *DeprecationError) Unwrap() error {
	return e.Err
}
