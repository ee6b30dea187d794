package h5go

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
)

// Handle is a reference-counted owner of one library reference to an
// identifier.
//
// Handles that resolved the same live identifier share a cell, so when the
// library releases the identifier every co-owner sees InvalidID at once.
// Close should be called when the handle is no longer needed, typically with
// defer; extra calls have no effect. A handle that is garbage collected while
// still open is closed by a finalizer.
//
// Handle is safe for concurrent use.
type Handle struct {
	rt     *Runtime
	cell   *cell
	closed atomic.Bool
}

func newHandle(rt *Runtime, c *cell) *Handle {
	h := &Handle{rt: rt, cell: c}
	runtime.SetFinalizer(h, (*Handle).finalize)
	return h
}

// InvalidHandle returns a handle that holds InvalidID and belongs to no
// runtime. It is inert: Clone returns another invalid handle and Close does
// nothing.
func InvalidHandle() *Handle {
	return &Handle{cell: newCell(InvalidID)}
}

// ID returns the identifier currently held, or InvalidID. A closed handle
// holds nothing, even while co-owners keep the identifier alive.
// It only takes the cell lock and may be called inside Runtime.Sync.
func (h *Handle) ID() ID {
	if h == nil || h.closed.Load() {
		return InvalidID
	}
	return h.cell.load()
}

// Invalidate marks the identifier invalid for this handle and every co-owner.
// It does not touch the library's reference count.
func (h *Handle) Invalidate() {
	if h == nil {
		return
	}
	h.cell.store(InvalidID)
}

// IsValidUserID reports whether the held identifier is a live,
// reference-counted library object.
func (h *Handle) IsValidUserID() bool {
	if h == nil || h.rt == nil {
		return false
	}
	return h.rt.IsValidUserID(h.ID())
}

// IsValidID reports whether the held identifier has a recognised category.
func (h *Handle) IsValidID() bool {
	if h == nil || h.rt == nil {
		return false
	}
	return h.rt.IsValidID(h.ID())
}

// Clone adds a library reference and returns a new co-owning handle. If the
// identifier is no longer live, the clone is an invalid handle. Clone never
// fails.
func (h *Handle) Clone() *Handle {
	if h == nil || h.rt == nil {
		return InvalidHandle()
	}
	var c *Handle
	h.rt.Sync(func(l *Locked) {
		c = l.Clone(h)
	})
	return c
}

// Close drops the handle's library reference. When the library has fully
// released the identifier, the shared cell is invalidated. Close is safe to
// call on invalid handles and more than once; only the first call has effect.
// It always returns nil.
func (h *Handle) Close() error {
	if h == nil || h.rt == nil {
		return nil
	}
	h.rt.Sync(func(l *Locked) {
		l.Release(h)
	})
	return nil
}

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool {
	return h != nil && h.closed.Load()
}

// Shares reports whether h and other are co-owners of the same cell.
func (h *Handle) Shares(other *Handle) bool {
	if h == nil || other == nil {
		return false
	}
	return h.cell == other.cell
}

// Runtime returns the runtime the handle belongs to, or nil for handles
// created by the package-level InvalidHandle.
func (h *Handle) Runtime() *Runtime {
	if h == nil {
		return nil
	}
	return h.rt
}

func (h *Handle) String() string {
	return fmt.Sprintf("handle(id=%d)", h.ID())
}

func (h *Handle) finalize() {
	h.rt.log.Debug("closing leaked handle", zap.Int64("id", int64(h.ID())))
	_ = h.Close()
}

func (h *Handle) clearFinalizer() {
	runtime.SetFinalizer(h, nil)
}
