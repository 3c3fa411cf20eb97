// Package version provides centralized version management for jsmorph.
package version

// Version is the current jsmorph version. Overridden at build time via
// -ldflags for release builds.
var Version = "0.2.0"
