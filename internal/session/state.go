package session

import "sync"

// State reports, at most once per commit session, that the session is new.
type State interface {
	CheckAndConsume() bool
}

// Memory is an in-process State.
type Memory struct {
	mu      sync.Mutex
	present bool
}

// NewMemory returns a State whose marker starts present or absent.
func NewMemory(present bool) *Memory {
	return &Memory{present: present}
}

// Set raises the marker.
func (m *Memory) Set() {
	m.mu.Lock()
	m.present = true
	m.mu.Unlock()
}

// Present reports whether the marker is raised.
func (m *Memory) Present() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present
}

// CheckAndConsume lowers the marker and reports whether it was raised.
func (m *Memory) CheckAndConsume() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.present
	m.present = false
	return was
}
