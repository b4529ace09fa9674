// Package session tracks whether an invocation opens a new commit session.
//
// The configuration front end creates a marker file before the first node
// script of a commit runs. The first vyshim invocation to see it deletes it
// and performs the daemon handshake. Consumption happens under an advisory
// lock so concurrent invocations cannot both claim one marker.
package session
