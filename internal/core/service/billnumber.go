package service

import (
	"fmt"
	"sync"
	"time"
)

// billNumberGenerator issues human-facing bill numbers that stay unique even
// when two sales land in the same millisecond: a per-millisecond sequence is
// appended to the timestamp.
type billNumberGenerator struct {
	mu        sync.Mutex
	lastMilli int64
	seq       int
}

func (g *billNumberGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.lastMilli {
		ms = g.lastMilli
		g.seq++
	} else {
		g.lastMilli = ms
		g.seq = 0
	}
	return fmt.Sprintf("BILL%d-%03d", ms, g.seq)
}
