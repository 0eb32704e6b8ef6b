// Package all imports all supported registry backends.
//
// Import this package for its side effects to register all ecosystems:
//
//	import (
//		"github.com/git-pkgs/deprecier"
//		_ "github.com/git-pkgs/deprecier/all"
//	)
//
//	// Now all ecosystems are available
//	ecosystems := deprecier.SupportedEcosystems()
//	// ["npm"]
package all

import (
	_ "github.com/git-pkgs/deprecier/internal/npm"
)
