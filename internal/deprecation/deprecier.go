// Package deprecation runs the deprecation pipeline: fetch the published
// versions, decide an action for each, and deprecate the ones the policy drops.
package deprecation

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/git-pkgs/deprecier/internal/config"
	"github.com/git-pkgs/deprecier/internal/core"
	"github.com/git-pkgs/deprecier/internal/log"
	"github.com/git-pkgs/deprecier/internal/rules"
	"github.com/git-pkgs/deprecier/internal/version"
)

// RunContext carries what a single execution needs from its caller.
type RunContext struct {
	// Cwd is the package directory the registry backend reads its manifest from.
	Cwd string
	// Env supplies registry credentials and overrides.
	Env map[string]string
	// DryRun stops after logging the versions to deprecate.
	DryRun bool
	// Logger overrides the Deprecier's logger for this run.
	Logger core.Logger
}

// Report describes what a Publish run did.
type Report struct {
	Package *core.PackageInfo
	Results []rules.Result
	// Deprecated lists the versions whose deprecation call succeeded, in order.
	Deprecated []string
	// Failed lists the versions whose deprecation call returned an error.
	Failed []string
	// Links holds the registry page and PURL of each deprecated version.
	Links map[string]map[string]string
	// Skipped is set when the package has never been published.
	Skipped bool
	DryRun  bool
}

// Pending returns the versions the policy selected for deprecation.
func (r *Report) Pending() []string {
	var out []string
	for _, res := range rules.Deprecations(r.Results) {
		out = append(out, res.Version.Original())
	}
	return out
}

type Option func(*Deprecier)

// WithLogger sets the destination of progress messages.
func WithLogger(l core.Logger) Option {
	return func(d *Deprecier) {
		d.logger = l
	}
}

// Deprecier holds the rules built during configuration and applies them on
// each Publish. It is not safe for concurrent Publish calls.
type Deprecier struct {
	registry core.Registry
	logger   core.Logger

	rules      []rules.Rule
	message    string
	configured bool
}

func New(registry core.Registry, opts ...Option) *Deprecier {
	d := &Deprecier{registry: registry}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.Pipeline(logrus.Fields{"ecosystem": registry.Ecosystem()})
	}
	return d
}

// VerifyConditions builds the rules from cfg and keeps them for later runs.
// It fails on unknown rule kinds or invalid options without touching the network.
func (d *Deprecier) VerifyConditions(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg == nil {
		cfg = config.Default()
	}

	generated, err := rules.Generate(cfg.RuleEntries())
	if err != nil {
		return fmt.Errorf("configuring rules: %w", err)
	}
	if !rules.EndsWithCatchAll(generated) {
		log.Warnf("the last rule is not %s; versions no rule matches will fail the run", rules.DeprecateAll)
	}

	d.rules = generated
	d.message = cfg.DeprecationMessage
	if d.message == "" {
		d.message = config.DefaultMessage
	}
	d.configured = true

	for _, r := range generated {
		log.Debugf("rule %d: %s (%s)", r.Index, r.String(), r.Action)
	}
	return nil
}

// Rules returns the configured rules in priority order.
func (d *Deprecier) Rules() []rules.Rule {
	return d.rules
}

// Plan applies the configured rules to raw version strings without any I/O.
func (d *Deprecier) Plan(raws []string) ([]rules.Result, error) {
	if !d.configured {
		return nil, core.ErrNotConfigured
	}
	versions, err := version.ParseAll(raws)
	if err != nil {
		return nil, err
	}
	return rules.Apply(versions, d.rules)
}

// Publish fetches the package's versions and deprecates those the rules
// select. An unpublished package is a successful no-op. Authentication
// happens once and only when something needs deprecating. Every selected
// version is attempted; failures are returned together as a
// *multierror.Error of *core.DeprecationError.
func (d *Deprecier) Publish(ctx context.Context, run RunContext) (*Report, error) {
	if !d.configured {
		return nil, core.ErrNotConfigured
	}
	logger := d.logger
	if run.Logger != nil {
		logger = run.Logger
	}

	info, err := d.registry.FetchPackageInfo(ctx, run.Cwd, run.Env)
	if err != nil {
		return nil, fmt.Errorf("fetching package info: %w", err)
	}

	report := &Report{DryRun: run.DryRun}
	if info == nil {
		report.Skipped = true
		logger.Log("Package is not published yet, nothing to deprecate")
		return report, nil
	}
	report.Package = info

	results, err := d.Plan(info.Versions)
	if err != nil {
		return report, err
	}
	report.Results = results

	pending := report.Pending()
	if len(pending) == 0 {
		logger.Log("No version to deprecate")
		return report, nil
	}

	logger.Log("Versions to deprecate", pending)
	if run.DryRun {
		return report, nil
	}

	if err := d.registry.Authenticate(ctx, info, run.Env); err != nil {
		return report, err
	}

	var errs error
	for _, v := range pending {
		if err := d.registry.Deprecate(ctx, info, v, d.message); err != nil {
			log.WithFields(logrus.Fields{"package": info.Name, "version": v}).Errorf("deprecation failed: %v", err)
			report.Failed = append(report.Failed, v)
			errs = multierror.Append(errs, &core.DeprecationError{Version: v, Err: err})
			continue
		}
		links := core.BuildURLs(d.registry.URLs(), info.Name, v)
		fields := logrus.Fields{"package": info.Name, "version": v}
		for key, link := range links {
			fields[key] = link
		}
		log.WithFields(fields).Info("deprecated")

		if report.Links == nil {
			report.Links = make(map[string]map[string]string)
		}
		report.Links[v] = links
		report.Deprecated = append(report.Deprecated, v)
	}
	return report, errs
}
