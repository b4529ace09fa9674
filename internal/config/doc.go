// Package config loads, normalizes, and validates vyshim configuration data.
//
// It supplies repository defaults matching the stock vyos-configd deployment,
// reads an optional TOML file, and honours environment overrides such as
// VYSHIM_ENDPOINT and VYSHIM_DEBUG. The Config type centralizes every knob the
// shim and vyshimctl need: the daemon endpoint and timeouts, the commit marker,
// the configuration snapshot commands, pass-through mode, logging, and the
// optional invocation journal.
//
// A missing configuration file is not an error: the shim runs on every node
// of a commit and must work on a system that never created one.
package config
