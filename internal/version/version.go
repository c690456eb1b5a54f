// Package version exposes the build version, set via -ldflags at
// release build time and falling back to the module's embedded VCS
// revision during development builds.
package version

import "runtime/debug"

var version string

// Get returns the current build version.
func Get() string {
	if version != "" {
		return version
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unavailable"
	}

	var revision string
	var modified bool

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if revision == "" {
		return "unavailable"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		revision += "-dirty"
	}

	return revision
}
