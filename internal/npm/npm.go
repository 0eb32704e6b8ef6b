// Package npm provides the deprecation backend for npm registries.
package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/git-pkgs/deprecier/internal/core"
	"github.com/git-pkgs/deprecier/internal/log"
)

const (
	DefaultURL = "https://registry.npmjs.org"
	ecosystem  = "npm"
	tokenEnv   = "NPM_TOKEN"
)

// ErrNoToken is returned by Authenticate when NPM_TOKEN is not set.
var ErrNoToken = errors.New("NPM_TOKEN is not set")

func init() {
	core.Register(ecosystem, DefaultURL, func(baseURL string, client *core.Client) core.Registry {
		return New(baseURL, client)
	})
}

type Registry struct {
	baseURL string
	client  *core.Client
	urls    *URLs

	// session is the authenticated client; nil until Authenticate succeeds.
	session *core.Client
}

func New(baseURL string, client *core.Client) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if client == nil {
		client = core.DefaultClient()
	}
	r := &Registry{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
	r.urls = &URLs{baseURL: r.baseURL}
	return r
}

func (r *Registry) Ecosystem() string {
	return ecosystem
}

func (r *Registry) URLs() core.URLBuilder {
	return r.urls
}

// packument is the part of the registry document needed to list versions.
type packument struct {
	Name     string                 `json:"name"`
	Versions map[string]versionInfo `json:"versions"`
	Time     map[string]string      `json:"time"`
}

type versionInfo struct {
	Version    string `json:"version"`
	Deprecated string `json:"deprecated"`
}

// FetchPackageInfo reads package.json in cwd and lists the published versions.
// Private packages and packages the registry does not know return nil, nil.
func (r *Registry) FetchPackageInfo(ctx context.Context, cwd string, env map[string]string) (*core.PackageInfo, error) {
	m, err := readManifest(cwd)
	if err != nil {
		return nil, err
	}
	if m.Private {
		log.Debugf("%s is private, nothing is published", m.Name)
		return nil, nil
	}

	registry := registryFor(m, env, r.baseURL)

	var resp packument
	if err := r.client.GetJSON(ctx, packumentURL(registry, m.Name), &resp); err != nil {
		var httpErr *core.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			log.Debugf("%s is not published on %s", m.Name, registry)
			return nil, nil
		}
		return nil, fmt.Errorf("fetching %s: %w", m.Name, err)
	}

	info := &core.PackageInfo{
		Ecosystem:  ecosystem,
		Name:       m.Name,
		Registry:   registry,
		Versions:   orderByPublishTime(resp.Versions, resp.Time),
		Deprecated: make(map[string]string),
	}
	for num, v := range resp.Versions {
		if v.Deprecated != "" {
			info.Deprecated[num] = v.Deprecated
		}
	}
	return info, nil
}

// orderByPublishTime sorts version numbers by their entry in the time map,
// oldest first. Versions without a timestamp sort first; ties fall back to
// the version string so the order is stable across runs.
func orderByPublishTime(versions map[string]versionInfo, times map[string]string) []string {
	published := make(map[string]time.Time, len(versions))
	nums := make([]string, 0, len(versions))
	for num := range versions {
		nums = append(nums, num)
		if ts, ok := times[num]; ok {
			published[num], _ = time.Parse(time.RFC3339, ts)
		}
	}

	sort.Slice(nums, func(i, j int) bool {
		ti, tj := published[nums[i]], published[nums[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return nums[i] < nums[j]
	})
	return nums
}

// Authenticate checks NPM_TOKEN against the registry's whoami endpoint and
// keeps a client that sends it on every later request to that registry.
func (r *Registry) Authenticate(ctx context.Context, info *core.PackageInfo, env map[string]string) error {
	registry := r.baseURL
	if info != nil && info.Registry != "" {
		registry = info.Registry
	}

	token := strings.TrimSpace(env[tokenEnv])
	if token == "" {
		return &core.AuthenticationError{Registry: registry, Err: ErrNoToken}
	}

	session := r.client.WithAuth(bearer(registry, token))

	var whoami struct {
		Username string `json:"username"`
	}
	if err := session.GetJSON(ctx, registry+"/-/whoami", &whoami); err != nil {
		return &core.AuthenticationError{Registry: registry, Err: err}
	}

	log.Debugf("authenticated to %s as %s", registry, whoami.Username)
	r.session = session
	return nil
}

// bearer returns an auth func that only sends the token to registry.
func bearer(registry, token string) func(string) (string, string) {
	return func(u string) (string, string) {
		if !strings.HasPrefix(u, registry+"/") {
			return "", ""
		}
		return "Authorization", "Bearer " + token
	}
}

// Deprecate sets the deprecated message of one version. The registry has no
// per-version endpoint, so the full document is read and written back.
func (r *Registry) Deprecate(ctx context.Context, info *core.PackageInfo, version, message string) error {
	if r.session == nil {
		return fmt.Errorf("deprecating %s@%s: %w", info.Name, version, core.ErrAuthentication)
	}
	if info.Deprecated[version] == message {
		log.Debugf("%s@%s already carries the message", info.Name, version)
		return nil
	}

	target := packumentURL(info.Registry, info.Name)

	body, err := r.session.GetBody(ctx, target+"?write=true")
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decoding %s: %w", target, err)
	}

	versions, _ := doc["versions"].(map[string]any)
	entry, ok := versions[version].(map[string]any)
	if !ok {
		return &core.NotFoundError{Ecosystem: ecosystem, Name: info.Name, Version: version}
	}
	if current, _ := entry["deprecated"].(string); current == message {
		return nil
	}
	entry["deprecated"] = message

	return r.session.PutJSON(ctx, target, doc, nil)
}

func packumentURL(registry, name string) string {
	return fmt.Sprintf("%s/%s", registry, escape(name))
}

// escape encodes a package name for a registry path; the scope separator
// becomes %2F as the npm CLI sends it.
func escape(name string) string {
	return url.PathEscape(name)
}
