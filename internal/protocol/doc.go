// Package protocol implements the client side of the vyos-configd
// request/reply exchange.
//
// A Client consumes the commit-session marker, performs the init handshake
// (init envelope, active configuration, working configuration) when a new
// session starts, then sends one node envelope and interprets the single
// status byte the daemon returns. The result is a tagged Outcome: either an
// exit code or an instruction to hand the node back to its script. The
// package never exits or replaces the process itself; cmd/vyshim does that.
//
// Collaborators are small interfaces (Channel, SessionState, SnapshotSource)
// so tests can drive the exchange without a daemon or a shell.
package protocol
