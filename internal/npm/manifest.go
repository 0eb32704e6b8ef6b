package npm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const manifestFile = "package.json"

// ErrNoPackageName is returned when package.json has no name field.
var ErrNoPackageName = errors.New("package.json has no name")

// manifest is the subset of package.json that decides where a package lives.
type manifest struct {
	Name          string `json:"name"`
	Private       bool   `json:"private"`
	PublishConfig struct {
		Registry string `json:"registry"`
	} `json:"publishConfig"`
}

func readManifest(cwd string) (*manifest, error) {
	path := filepath.Join(cwd, manifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPackageName)
	}
	return &m, nil
}

// registryFor picks the registry: publishConfig, then a base URL set
// explicitly on the backend, then the npm_config_registry environment, then
// the public registry.
func registryFor(m *manifest, env map[string]string, base string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	explicit := ""
	if base != DefaultURL {
		explicit = base
	}

	candidates := []string{
		m.PublishConfig.Registry,
		explicit,
		env["NPM_CONFIG_REGISTRY"],
		env["npm_config_registry"],
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return strings.TrimSuffix(c, "/")
		}
	}
	return DefaultURL
}
