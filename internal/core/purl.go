package core

import (
	"fmt"

	"github.com/git-pkgs/purl"
)

// PURL is a parsed Package URL.
type PURL = purl.PURL

// ParsePURL parses a Package URL string into its components.
// Both pkg:npm/left-pad and pkg:npm/left-pad@1.3.0 are accepted.
func ParsePURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}

// FullName returns the package name in the format the registry expects.
// For npm: "@babel/core".
func FullName(p *PURL) string {
	if p.Namespace == "" {
		return p.Name
	}
	return p.Namespace + "/" + p.Name
}

// NewFromPURL creates the backend for the PURL's ecosystem and returns the
// full package name. A repository_url qualifier selects a private registry.
func NewFromPURL(purlStr string, client *Client) (Registry, string, error) {
	p, err := ParsePURL(purlStr)
	if err != nil {
		return nil, "", err
	}
	if p.Name == "" {
		return nil, "", fmt.Errorf("PURL has no package name: %s", purlStr)
	}

	baseURL := p.Qualifiers.Map()["repository_url"]
	reg, err := New(p.Type, baseURL, client)
	if err != nil {
		return nil, "", err
	}
	return reg, FullName(p), nil
}
