package client

// URLBuilder renders the human-facing identities of a published version.
type URLBuilder interface {
	// Registry returns the package page, or "" when the registry has none.
	Registry(name, version string) string
	PURL(name, version string) string
}

// Link keys returned by BuildURLs.
const (
	LinkRegistry = "registry"
	LinkPURL     = "purl"
)

// BuildURLs collects the non-empty links of one version, keyed by
// LinkRegistry and LinkPURL. A nil builder yields an empty map.
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	links := make(map[string]string, 2)
	if urls == nil {
		return links
	}
	for key, fn := range map[string]func(string, string) string{
		LinkRegistry: urls.Registry,
		LinkPURL:     urls.PURL,
	} {
		if v := fn(name, version); v != "" {
			links[key] = v
		}
	}
	return links
}
