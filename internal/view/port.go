// Package view binds reports to a navigation location: it parses the current
// hash, renders it, and turns cell clicks back into location changes.
package view

import (
	"slices"
	"sync"
)

// Port is the navigation location a controller reads and writes. Setting the
// location never renders directly; the change comes back through OnChange.
type Port interface {
	Current() string
	Set(hash string)
	OnChange(fn func(hash string))
}

// MemoryPort is an in-process Port with back/forward history. Changes are
// queued by Set, Back and Forward and delivered by Pump.
type MemoryPort struct {
	mu        sync.Mutex
	history   []string
	pos       int
	pending   []string
	listeners []func(string)
}

// NewMemoryPort starts at initial, which may be empty.
func NewMemoryPort(initial string) *MemoryPort {
	return &MemoryPort{history: []string{initial}}
}

// Current implements Port.
func (p *MemoryPort) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history[p.pos]
}

// Set implements Port. Setting the current hash again is not a change.
func (p *MemoryPort) Set(hash string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.history[p.pos] == hash {
		return
	}
	p.history = append(p.history[:p.pos+1], hash)
	p.pos++
	p.pending = append(p.pending, hash)
}

// OnChange implements Port.
func (p *MemoryPort) OnChange(fn func(string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Back moves one step back in history. It reports false at the start.
func (p *MemoryPort) Back() bool {
	return p.move(-1)
}

// Forward moves one step forward in history. It reports false at the end.
func (p *MemoryPort) Forward() bool {
	return p.move(1)
}

func (p *MemoryPort) move(step int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.pos + step
	if next < 0 || next >= len(p.history) {
		return false
	}
	p.pos = next
	p.pending = append(p.pending, p.history[next])
	return true
}

// Pending reports how many changes are waiting for Pump.
func (p *MemoryPort) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Pump delivers queued changes, including any queued while delivering, and
// returns how many were delivered.
func (p *MemoryPort) Pump() int {
	n := 0
	for {
		p.mu.Lock()
		if len(p.pending) == 0 {
			p.mu.Unlock()
			return n
		}
		hash := p.pending[0]
		p.pending = p.pending[1:]
		listeners := slices.Clone(p.listeners)
		p.mu.Unlock()

		for _, fn := range listeners {
			fn(hash)
		}
		n++
	}
}
