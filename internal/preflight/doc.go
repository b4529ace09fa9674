// Package preflight provides readiness checks for the environment vyshim
// runs in.
//
// vyshimctl status runs RunAll and renders each Result. Checks never modify
// state: the daemon check dials the socket without sending a request, and the
// marker check only reports whether a commit session is pending.
package preflight
