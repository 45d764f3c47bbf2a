// Package avidb defines the lifecycle interfaces of the avidb
// application. Implementations live in internal/io* packages; commands
// depend only on the interfaces declared here.
package avidb

var (
	// Version is the application version, set by build flags.
	Version = "v0.1.0"

	// Build is the build timestamp, set by build flags.
	Build = "n/a"
)
