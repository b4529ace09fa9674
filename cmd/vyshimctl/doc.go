// Package main hosts vyshimctl, the operator tool for vyshim installations.
//
// The Cobra command tree reports environment readiness (status), scaffolds and
// checks the configuration file (config), raises or clears the commit marker
// by hand (marker), and inspects the optional invocation journal (journal).
// It never talks to vyos-configd beyond the reachability probe in status.
package main
