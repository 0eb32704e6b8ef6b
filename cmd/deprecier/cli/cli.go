// Package cli wires the deprecier commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	_ "github.com/git-pkgs/deprecier/all"
	"github.com/git-pkgs/deprecier/internal/config"
	"github.com/git-pkgs/deprecier/internal/core"
	"github.com/git-pkgs/deprecier/internal/deprecation"
	"github.com/git-pkgs/deprecier/internal/log"
)

// Identification names the running binary and where it writes.
type Identification struct {
	Name    string
	Version string

	// Stdout, Stderr and Environ default to the process's own.
	Stdout  io.Writer
	Stderr  io.Writer
	Environ func() []string
}

func (id Identification) stdout() io.Writer {
	if id.Stdout != nil {
		return id.Stdout
	}
	return os.Stdout
}

func (id Identification) stderr() io.Writer {
	if id.Stderr != nil {
		return id.Stderr
	}
	return os.Stderr
}

func (id Identification) env() map[string]string {
	environ := os.Environ
	if id.Environ != nil {
		environ = id.Environ
	}
	env := make(map[string]string)
	for _, kv := range environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Run executes the command line and returns the process exit code.
func Run(id Identification, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := Command(id)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(id.stderr(), "error:", err)
		return 1
	}
	return 0
}

// Command builds the root command and its subcommands.
func Command(id Identification) *cobra.Command {
	root := &cobra.Command{
		Use:           id.Name,
		Short:         "Deprecate old versions of a published package according to a policy",
		Version:       id.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(id.stdout())
	root.SetErr(id.stderr())
	bindFlags(root.PersistentFlags())

	root.AddCommand(
		verifyCommand(id),
		publishCommand(id),
		planCommand(id),
		rulesCommand(id),
	)
	return root
}

// session is the state every command needs after flags are parsed.
type session struct {
	opts      *options
	cfg       *config.Config
	deprecier *deprecation.Deprecier
}

func setup(cmd *cobra.Command, id Identification) (*session, error) {
	opts, err := loadOptions(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := opts.setupLogging(id); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.Config, opts.Cwd)
	if err != nil {
		return nil, err
	}
	if opts.Registry != "" {
		cfg.Registry = opts.Registry
	}

	registry, err := core.New(cfg.Ecosystem, cfg.Registry, opts.client(id))
	if err != nil {
		return nil, fmt.Errorf("%w (supported: %s)", err, strings.Join(core.SupportedEcosystems(), ", "))
	}
	log.Debugf("using %s backend, %s", registry.Ecosystem(), firstNonEmpty(cfg.Registry, core.DefaultURL(cfg.Ecosystem)))

	d := deprecation.New(registry)
	if err := d.VerifyConditions(cmd.Context(), cfg); err != nil {
		return nil, err
	}
	return &session{opts: opts, cfg: cfg, deprecier: d}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// errDeprecationsFailed prefixes the aggregated per-version failures.
var errDeprecationsFailed = errors.New("some versions could not be deprecated")
