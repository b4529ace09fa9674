//go:build !vyshim_debug

package logging

const debugBuild = false
