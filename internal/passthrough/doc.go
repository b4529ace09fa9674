// Package passthrough runs node scripts the daemon hands back, and the
// configuration dump commands used during the init handshake.
//
// Replace swaps the process image for the script; Spawn runs it as a child
// and reports its exit status; RunChild captures a shell command's output.
package passthrough
