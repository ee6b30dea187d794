package h5go

import (
	"sync"

	"go.uber.org/zap"
)

// cell is the slot shared by every Handle that resolved the same identifier
// value. It holds a live id or InvalidID.
type cell struct {
	mu sync.RWMutex
	id ID
}

func newCell(id ID) *cell {
	return &cell{id: id}
}

func (c *cell) load() ID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

func (c *cell) store(id ID) {
	c.mu.Lock()
	c.id = id
	c.mu.Unlock()
}

// registry maps identifier values to their current cell.
//
// Entries are created on first sight of a value and never deleted. When the
// library reuses a value whose cell was invalidated, the entry is replaced
// by a fresh cell; handles still holding the old cell keep it, invalid.
type registry struct {
	mu    sync.Mutex
	cells map[ID]*cell
	log   *zap.Logger
}

func (r *registry) resolve(id ID) *cell {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cells == nil {
		r.cells = make(map[ID]*cell)
	}

	c, ok := r.cells[id]
	if !ok {
		c = newCell(id)
		r.cells[id] = c
		return c
	}
	if c.load() != id {
		c = newCell(id)
		r.cells[id] = c
		if r.log != nil {
			r.log.Debug("replaced stale registry entry", zap.Int64("id", int64(id)))
		}
	}
	return c
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cells)
}
