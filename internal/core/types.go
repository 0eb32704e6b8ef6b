// Package core provides shared types, the error taxonomy and the backend registry.
package core

import (
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// Action is the outcome a rule assigns to a version.
type Action string

const (
	Support   Action = "support"
	Deprecate Action = "deprecate"
)

// PackageInfo identifies a published package and lists every version it has.
type PackageInfo struct {
	Ecosystem string
	Name      string
	Registry  string   // base URL the versions were read from
	Versions  []string // registry order, oldest publication first

	// Deprecated maps a version to its current deprecation message.
	// Versions without a message are absent.
	Deprecated map[string]string
}

// IsDeprecated reports whether version already carries a deprecation message.
func (p *PackageInfo) IsDeprecated(version string) bool {
	return p.Deprecated[version] != ""
}

// PURL renders the package URL for version. An empty version yields
// the package-level PURL.
func (p *PackageInfo) PURL(version string) string {
	namespace, name := SplitScope(p.Name)
	return packageurl.NewPackageURL(p.Ecosystem, namespace, name, version, nil, "").ToString()
}

// SplitScope splits "@scope/name" into ("@scope", "name").
// Unscoped names return an empty namespace.
func SplitScope(fullName string) (namespace, name string) {
	if strings.HasPrefix(fullName, "@") && strings.Contains(fullName, "/") {
		parts := strings.SplitN(fullName, "/", 2)
		return parts[0], parts[1]
	}
	return "", fullName
}

// Logger receives the progress messages of a run.
type Logger interface {
	Log(message string, details ...any)
}
