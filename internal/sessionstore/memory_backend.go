package sessionstore

import "sync"

type MemoryBackend struct {
	value string
	mu    sync.Mutex
}

func NewMemoryBackend() (*MemoryBackend, error) {
	return &MemoryBackend{}, nil
}

func (m *MemoryBackend) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.value, nil
}

func (m *MemoryBackend) Set(value string) error {
	m.mu.Lock()
	m.value = value
	m.mu.Unlock()

	return nil
}

func (m *MemoryBackend) Clear() error {
	return m.Set("")
}
