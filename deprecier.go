// Package deprecier deprecates old versions of a published package according
// to an ordered list of rules.
//
// Each version is given exactly one action, support or deprecate, by the first
// rule that matches it. Versions marked deprecate get the configured message
// written to the registry.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/git-pkgs/deprecier"
//		_ "github.com/git-pkgs/deprecier/all"
//	)
//
//	reg, err := deprecier.New("npm", "", deprecier.DefaultClient())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := deprecier.LoadConfig("", ".")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	d := deprecier.NewDeprecier(reg)
//	if err := d.VerifyConditions(ctx, cfg); err != nil {
//		log.Fatal(err)
//	}
//	report, err := d.Publish(ctx, deprecier.RunContext{Cwd: ".", Env: env})
//
// Rules can also be evaluated without any registry:
//
//	results, err := deprecier.ApplyRules([]string{"1.0.0", "2.0.0"}, deprecier.DefaultRules())
package deprecier

import (
	"github.com/git-pkgs/deprecier/client"
	"github.com/git-pkgs/deprecier/internal/config"
	"github.com/git-pkgs/deprecier/internal/core"
	"github.com/git-pkgs/deprecier/internal/deprecation"
	"github.com/git-pkgs/deprecier/internal/rules"
	"github.com/git-pkgs/deprecier/internal/version"
)

// Re-export types from internal packages
type (
	// Registry is the interface implemented by every ecosystem backend.
	Registry = core.Registry

	// PackageInfo identifies a published package and lists its versions.
	PackageInfo = core.PackageInfo

	// Action is support or deprecate.
	Action = core.Action

	// Logger receives progress messages.
	Logger = core.Logger

	// Version is a parsed semantic version.
	Version = version.Version

	// Config is the deprecation policy file.
	Config = config.Config

	// RuleEntry is one configured rule before validation.
	RuleEntry = rules.Entry

	// Rule is a validated rule ready to be applied.
	Rule = rules.Rule

	// Result is the action decided for one version.
	Result = rules.Result

	// Deprecier runs the fetch, decide and deprecate pipeline.
	Deprecier = deprecation.Deprecier

	// RunContext carries the working directory, environment and dry-run flag of a run.
	RunContext = deprecation.RunContext

	// Report describes what a run did.
	Report = deprecation.Report
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client

	// URLBuilder constructs URLs for a registry.
	URLBuilder = client.URLBuilder

	// RateLimiter controls request pacing.
	RateLimiter = client.RateLimiter

	// Option configures a Client.
	Option = client.Option

	// PURL is a parsed package URL.
	PURL = core.PURL
)

// Re-export constants
const (
	Support   = core.Support
	Deprecate = core.Deprecate
)

// Re-export errors
var (
	ErrNotFound             = client.ErrNotFound
	ErrUpstreamDown         = client.ErrUpstreamDown
	ErrInvalidVersionFormat = core.ErrInvalidVersionFormat
	ErrUnknownRuleKind      = core.ErrUnknownRuleKind
	ErrInvalidRuleOptions   = core.ErrInvalidRuleOptions
	ErrUnresolvedVersion    = core.ErrUnresolvedVersion
	ErrAuthentication       = core.ErrAuthentication
	ErrDeprecation          = core.ErrDeprecation
	ErrNotConfigured        = core.ErrNotConfigured
)

// Error types
type (
	HTTPError              = client.HTTPError
	NotFoundError          = client.NotFoundError
	RateLimitError         = client.RateLimitError
	InvalidVersionError    = core.InvalidVersionError
	UnresolvedVersionError = core.UnresolvedVersionError
	AuthenticationError    = core.AuthenticationError
	DeprecationError       = core.DeprecationError
)

// New creates a new registry backend for the given ecosystem.
// If baseURL is empty, the default registry URL is used.
// If client is nil, DefaultClient() is used.
func New(ecosystem string, baseURL string, c *Client) (Registry, error) {
	return core.New(ecosystem, baseURL, c)
}

// NewFromPURL creates the backend for a package URL such as pkg:npm/left-pad
// and returns the full package name. A repository_url qualifier selects a
// private registry.
func NewFromPURL(purl string, c *Client) (Registry, string, error) {
	return core.NewFromPURL(purl, c)
}

// ParsePURL parses a package URL.
func ParsePURL(purl string) (*PURL, error) {
	return core.ParsePURL(purl)
}

// NewDeprecier returns a pipeline bound to reg. Call VerifyConditions before Publish.
func NewDeprecier(reg Registry, opts ...deprecation.Option) *Deprecier {
	return deprecation.New(reg, opts...)
}

// WithLogger sends a Deprecier's progress messages to l.
var WithLogger = deprecation.WithLogger

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// WithRateLimiter paces requests, e.g. with a *rate.Limiter.
var WithRateLimiter = client.WithRateLimiter

// SupportedEcosystems returns all registered ecosystem types.
// Note: ecosystems must be imported to be registered.
func SupportedEcosystems() []string {
	return core.SupportedEcosystems()
}

// DefaultURL returns the default registry URL for an ecosystem.
func DefaultURL(ecosystem string) string {
	return core.DefaultURL(ecosystem)
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry" and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	return client.BuildURLs(urls, name, version)
}

// LoadConfig reads the policy file at path, or the default file in cwd.
func LoadConfig(path, cwd string) (*Config, error) {
	return config.Load(path, cwd)
}

// ParseConfig decodes a YAML policy.
func ParseConfig(data []byte) (*Config, error) {
	return config.Parse(data)
}

// ParseVersion parses a semantic version string.
func ParseVersion(raw string) (*Version, error) {
	return version.Parse(raw)
}

// DefaultRules returns the policy applied when none is configured.
func DefaultRules() []RuleEntry {
	return rules.DefaultEntries()
}

// ApplyRules parses raws and decides an action for each, in input order.
func ApplyRules(raws []string, entries []RuleEntry) ([]Result, error) {
	generated, err := rules.Generate(entries)
	if err != nil {
		return nil, err
	}
	versions, err := version.ParseAll(raws)
	if err != nil {
		return nil, err
	}
	return rules.Apply(versions, generated)
}
