package npm

import (
	"fmt"

	packageurl "github.com/package-url/packageurl-go"

	"github.com/git-pkgs/deprecier/internal/core"
)

type URLs struct {
	baseURL string
}

// Registry returns the npmjs.com page of a version. Other registries have
// no public package page, so it returns "" for them.
func (u *URLs) Registry(name, version string) string {
	if u.baseURL != DefaultURL {
		return ""
	}
	if version != "" {
		return fmt.Sprintf("https://www.npmjs.com/package/%s/v/%s", name, version)
	}
	return fmt.Sprintf("https://www.npmjs.com/package/%s", name)
}

func (u *URLs) PURL(name, version string) string {
	namespace, pkgName := core.SplitScope(name)
	return packageurl.NewPackageURL(ecosystem, namespace, pkgName, version, nil, "").ToString()
}
