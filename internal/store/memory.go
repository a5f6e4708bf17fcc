package store

import (
	"context"
	"sync"

	"github.com/newhook/flagtrack/internal/flag"
)

// Memory is an in-process Backend.
type Memory struct {
	mu    sync.Mutex
	flags []*flag.Flag
	saves int
}

var _ Backend = (*Memory)(nil)

// NewMemory returns a Memory backend holding copies of flags.
func NewMemory(flags ...*flag.Flag) *Memory {
	return &Memory{flags: cloneAll(flags)}
}

// Load returns copies of the stored flags.
func (m *Memory) Load(context.Context) ([]*flag.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.flags), nil
}

// Save replaces the stored flags with copies of flags.
func (m *Memory) Save(_ context.Context, flags []*flag.Flag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags = cloneAll(flags)
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func cloneAll(flags []*flag.Flag) []*flag.Flag {
	out := make([]*flag.Flag, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Clone())
	}
	return out
}
