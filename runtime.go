package h5go

import (
	"sync"

	"go.uber.org/zap"
)

// Native is the capability surface of the identifier layer of libhdf5.
// Implementations need not be safe for concurrent use: a Runtime calls them
// only while holding its lock.
type Native interface {
	// GetType returns the category of id (H5Iget_type).
	GetType(id ID) IDType
	// IsValid reports whether id names a live, reference-counted, non-predefined
	// object (H5Iis_valid).
	IsValid(id ID) bool
	// IncRef increments the library reference count of id (H5Iinc_ref) and
	// returns the new count, or a negative value on failure.
	IncRef(id ID) int
	// DecRef decrements the library reference count of id (H5Idec_ref) and
	// returns the new count, or a negative value on failure. When the count
	// reaches zero the library releases id and may reuse its value.
	DecRef(id ID) int
}

// RefCounter is an optional Native capability reporting the library
// reference count of an identifier (H5Iget_ref).
type RefCounter interface {
	GetRef(id ID) int
}

// Runtime serializes all access to one Native library and owns the registry
// of identifiers issued by it.
//
// Lock order is fixed: the runtime lock is outermost, then the registry
// mutex, then a handle's cell lock. Native calls are made only with the
// runtime lock held and never while the registry or a cell lock is held.
type Runtime struct {
	mu     sync.Mutex
	native Native
	reg    registry
	log    *zap.Logger
	locked Locked
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for handle lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.log = l
		}
	}
}

// NewRuntime creates a runtime over native. Each Native instance must be
// wrapped by exactly one Runtime; two runtimes over the same library would
// each keep their own registry and lock.
func NewRuntime(native Native, opts ...Option) *Runtime {
	rt := &Runtime{
		native: native,
		log:    Logger(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.reg.log = rt.log
	rt.locked.rt = rt
	return rt
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *zap.Logger {
	return rt.log
}

// Sync runs fn with the runtime lock held. The *Locked passed to fn is the
// only way to reach the native library while the lock is held; fn must not
// retain it, and must not call Runtime or Handle methods that take the lock
// themselves (Go mutexes are not reentrant).
//
// A panic in fn releases the lock and propagates.
func (rt *Runtime) Sync(fn func(l *Locked)) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	fn(&rt.locked)
}

// IDType returns the category of id, or BadID.
func (rt *Runtime) IDType(id ID) IDType {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.locked.IDType(id)
}

// IsValidID reports whether id has a recognised category.
func (rt *Runtime) IsValidID(id ID) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.locked.IsValidID(id)
}

// IsValidUserID reports whether id is a live, reference-counted object.
func (rt *Runtime) IsValidUserID(id ID) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.locked.IsValidUserID(id)
}

// NewHandle validates id and returns a handle resolved through the registry.
// The handle takes over one library reference to id; it does not add one.
func (rt *Runtime) NewHandle(id ID) (*Handle, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.locked.NewHandle(id)
}

// InvalidHandle returns a handle bound to rt that holds InvalidID.
func (rt *Runtime) InvalidHandle() *Handle {
	return rt.locked.InvalidHandle()
}

// RegistrySize returns the number of identifier values the registry has seen
// and still maps. Entries are replaced, never removed.
func (rt *Runtime) RegistrySize() int {
	return rt.reg.len()
}

// Locked is the runtime lock in hand. It is only valid inside Runtime.Sync.
type Locked struct {
	rt *Runtime
}

// Runtime returns the runtime whose lock is held.
func (l *Locked) Runtime() *Runtime {
	return l.rt
}

// IDType returns BadID when id is not positive or the library reports a
// category outside (BadID, NTypes); otherwise the library's category.
func (l *Locked) IDType(id ID) IDType {
	if id <= 0 {
		return BadID
	}
	t := l.rt.native.GetType(id)
	if !t.InRange() {
		return BadID
	}
	return t
}

// IsValidID reports whether id has a recognised category. Predefined ids such
// as property list classes and native datatypes are valid.
func (l *Locked) IsValidID(id ID) bool {
	return l.IDType(id).InRange()
}

// IsValidUserID reports whether the library considers id a live,
// reference-counted, non-predefined object.
func (l *Locked) IsValidUserID(id ID) bool {
	return l.rt.native.IsValid(id)
}

// NewHandle is Runtime.NewHandle with the lock already held.
func (l *Locked) NewHandle(id ID) (*Handle, error) {
	if !l.IsValidUserID(id) {
		return nil, &InvalidHandleError{ID: id}
	}
	return newHandle(l.rt, l.rt.reg.resolve(id)), nil
}

// InvalidHandle returns a handle bound to the runtime that holds InvalidID.
// It never touches the registry.
func (l *Locked) InvalidHandle() *Handle {
	return &Handle{rt: l.rt, cell: newCell(InvalidID)}
}

// Clone is Handle.Clone with the lock already held.
func (l *Locked) Clone(h *Handle) *Handle {
	if h == nil || h.closed.Load() {
		return l.InvalidHandle()
	}
	id := h.cell.load()
	l.incref(id)
	c, err := l.NewHandle(id)
	if err != nil {
		l.rt.log.Debug("clone degraded to invalid handle", zap.Int64("id", int64(id)))
		return l.InvalidHandle()
	}
	return c
}

// Release is Handle.Close with the lock already held.
func (l *Locked) Release(h *Handle) {
	if h == nil || !h.closed.CompareAndSwap(false, true) {
		return
	}
	h.clearFinalizer()
	l.decref(h.cell)
}

// RefCount returns the library reference count of id, or 0 when id is not a
// live user object or the native library cannot report counts.
func (l *Locked) RefCount(id ID) int {
	rc, ok := l.rt.native.(RefCounter)
	if !ok || !l.IsValidUserID(id) {
		return 0
	}
	if n := rc.GetRef(id); n > 0 {
		return n
	}
	return 0
}

func (l *Locked) incref(id ID) {
	if l.IsValidUserID(id) {
		l.rt.native.IncRef(id)
	}
}

// decref drops one library reference and invalidates the cell once the
// library no longer knows the id at all. The value may be handed out again
// right after release, so co-owners must stop treating it as live.
func (l *Locked) decref(c *cell) {
	id := c.load()
	if id == InvalidID {
		return
	}
	if l.IsValidID(id) {
		l.rt.native.DecRef(id)
	}
	if !l.IsValidUserID(id) && !l.IsValidID(id) {
		c.store(InvalidID)
		l.rt.log.Debug("identifier released", zap.Int64("id", int64(id)))
	}
}
