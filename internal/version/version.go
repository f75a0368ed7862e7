// Package version holds the build-time version string.
package version

// Version is the dvtm-go release version, exported to children via the
// DVTM environment variable.
const Version = "1.0.0"
