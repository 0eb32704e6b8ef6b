package core

import (
	"github.com/git-pkgs/deprecier/client"
)

// Type aliases so ecosystem backends only import core.
type (
	RateLimiter   = client.RateLimiter
	Client        = client.Client
	Option        = client.Option
	URLBuilder    = client.URLBuilder
	HTTPError     = client.HTTPError
	NotFoundError = client.NotFoundError
)

// Function aliases.
var (
	ErrNotFound    = client.ErrNotFound
	DefaultClient  = client.DefaultClient
	NewClient      = client.NewClient
	WithTimeout    = client.WithTimeout
	WithMaxRetries = client.WithMaxRetries
	BuildURLs      = client.BuildURLs
)
