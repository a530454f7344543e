// Package version holds the build version, overridden at release time
// via -ldflags.
package version

var Version = "0.1.0"
