package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Memory keeps committed files in memory. Safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// Write buffers the content and stores it under name only on success.
func (m *Memory) Write(ctx context.Context, name string, write func(io.Writer) error) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.files[name] = buf.Bytes()
	m.mu.Unlock()
	return "mem://" + name, nil
}

// File returns a committed file's content.
func (m *Memory) File(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("file %q not found", name)
	}
	return data, nil
}

// Names returns committed file names in sorted order.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
