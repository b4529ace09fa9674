// Package ipc carries requests to vyos-configd over a ZeroMQ REQ socket on
// an ipc:// endpoint.
//
// Channel enforces strict request/reply lockstep: one request is outstanding
// at a time and a failed exchange poisons the channel, since a REQ socket
// cannot recover from a lost reply. Server is the matching REP side used to
// stand in for the daemon in tests.
package ipc
