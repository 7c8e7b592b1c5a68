package api

import (
	"maps"
	"sync"
)

type (
	// Channel is an endpoint used by process instances to talk to the
	// outside world
	Channel interface {
		Send(payload any) error
	}

	// ChannelManager is a concurrency-safe name to Channel registry
	ChannelManager struct {
		mu       sync.RWMutex
		channels map[string]Channel
	}
)

// NewChannelManager creates an empty channel registry
func NewChannelManager() *ChannelManager {
	return &ChannelManager{
		channels: map[string]Channel{},
	}
}

// RegisterChannel binds a channel to name, replacing any previous binding
func (m *ChannelManager) RegisterChannel(name string, ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[name] = ch
}

// UnregisterChannel removes the channel bound to name
func (m *ChannelManager) UnregisterChannel(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, name)
}

// Channel returns the channel bound to name
func (m *ChannelManager) Channel(name string) (Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[name]
	return ch, ok
}

// Channels returns a copy of the current bindings
func (m *ChannelManager) Channels() map[string]Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.channels)
}
