package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the one-byte reply the daemon sends for every node request.
type Status uint8

const (
	StatusSuccess     Status = 1 << 0
	StatusErrorCommit Status = 1 << 1
	StatusErrorDaemon Status = 1 << 2
	StatusPass        Status = 1 << 3
)

// ErrEmptyReply marks a node reply that carried no status byte.
var ErrEmptyReply = errors.New("empty status reply")

// ParseStatus interprets a node reply. Only the first byte is significant.
// An empty reply yields StatusErrorDaemon together with ErrEmptyReply.
func ParseStatus(reply []byte) (Status, error) {
	if len(reply) == 0 {
		return StatusErrorDaemon, ErrEmptyReply
	}
	return Status(reply[0]), nil
}

// Has reports whether every bit of flag is set.
func (s Status) Has(flag Status) bool {
	return flag != 0 && s&flag == flag
}

// IsPass reports whether the daemon delegated the node back to its script.
func (s Status) IsPass() bool {
	return s&StatusPass != 0
}

// IsError reports whether the daemon rejected the node. PASS takes
// precedence, so a status carrying both is not an error.
func (s Status) IsError() bool {
	return !s.IsPass() && s&(StatusErrorCommit|StatusErrorDaemon) != 0
}

// IsSuccess reports whether the status is neither PASS nor an error.
func (s Status) IsSuccess() bool {
	return !s.IsPass() && !s.IsError()
}

func (s Status) String() string {
	names := []struct {
		flag Status
		name string
	}{
		{StatusSuccess, "SUCCESS"},
		{StatusErrorCommit, "ERROR_COMMIT"},
		{StatusErrorDaemon, "ERROR_DAEMON"},
		{StatusPass, "PASS"},
	}
	var parts []string
	rest := s
	for _, n := range names {
		if s.Has(n.flag) {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}
