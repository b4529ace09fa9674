//go:build vyshim_debug

package logging

// Built with -tags vyshim_debug: every logger runs at debug level.
const debugBuild = true
