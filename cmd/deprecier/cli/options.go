package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/git-pkgs/deprecier/client"
	"github.com/git-pkgs/deprecier/internal/config"
	"github.com/git-pkgs/deprecier/internal/core"
	"github.com/git-pkgs/deprecier/internal/log"
)

const envPrefix = "DEPRECIER"

// options are the settings that come from flags or DEPRECIER_* variables.
type options struct {
	Config     string
	Cwd        string
	Registry   string
	DryRun     bool
	LogLevel   string
	LogFormat  string
	Timeout    time.Duration
	MaxRetries int
	Rate       float64
}

func bindFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", fmt.Sprintf("policy file (default %s in --cwd)", config.DefaultFile))
	flags.String("cwd", "", "package directory (default current directory)")
	flags.String("registry", "", "registry base URL, overrides the policy file and NPM_CONFIG_REGISTRY")
	flags.Bool("dry-run", false, "log the versions to deprecate without authenticating or deprecating")
	flags.String("log-level", "info", "log level: debug, info, warn, error or quiet")
	flags.String("log-format", "text", "log format: text or json")
	flags.Duration("timeout", 30*time.Second, "HTTP timeout per request")
	flags.Int("max-retries", 5, "retries for rate limited or failing registry requests")
	flags.Float64("rate", 0, "maximum registry requests per second, 0 for unlimited")
}

// loadOptions merges flags and environment through viper. Flags win.
func loadOptions(flags *pflag.FlagSet) (*options, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	opts := &options{
		Config:     v.GetString("config"),
		Cwd:        v.GetString("cwd"),
		Registry:   v.GetString("registry"),
		DryRun:     v.GetBool("dry-run"),
		LogLevel:   v.GetString("log-level"),
		LogFormat:  v.GetString("log-format"),
		Timeout:    v.GetDuration("timeout"),
		MaxRetries: v.GetInt("max-retries"),
		Rate:       v.GetFloat64("rate"),
	}

	if opts.Cwd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		opts.Cwd = cwd
	}
	switch opts.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.LogFormat)
	}
	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("max-retries must not be negative")
	}
	if opts.Rate < 0 {
		return nil, fmt.Errorf("rate must not be negative")
	}
	return opts, nil
}

func (o *options) setupLogging(id Identification) error {
	level, err := log.ParseLevel(o.LogLevel)
	if err != nil {
		return err
	}
	log.Set(log.New(log.Config{
		Level:      level,
		Structured: o.LogFormat == "json",
		Output:     id.stderr(),
	}))
	return nil
}

func (o *options) client(id Identification) *core.Client {
	opts := []client.Option{
		client.WithTimeout(o.Timeout),
		client.WithMaxRetries(o.MaxRetries),
		client.WithUserAgent(fmt.Sprintf("%s/%s", id.Name, id.Version)),
	}
	if o.Rate > 0 {
		opts = append(opts, client.WithRateLimiter(rate.NewLimiter(rate.Limit(o.Rate), 1)))
	}
	return client.NewClient(opts...)
}
