// Package h5itest provides an in-memory stand-in for the identifier layer of
// libhdf5, for testing code built on h5go without the real library.
//
// Like libhdf5, Library reuses released identifier values (most recently
// released first) and distinguishes predefined identifiers, which are valid
// but not reference counted. It is not safe for concurrent native calls and
// records every overlapping entry as a violation, so tests can check that
// callers serialize access.
package h5itest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/obinnaokechukwu/h5go"
)

type object struct {
	typ        h5go.IDType
	refs       int
	predefined bool
}

// Library is a fake h5go.Native.
type Library struct {
	active     atomic.Int32
	violations atomic.Int64

	mu       sync.Mutex
	objects  map[h5go.ID]*object
	freeList []h5go.ID
	next     h5go.ID

	typeCalls  int
	validCalls int
	incCalls   int
	decCalls   int
	refCalls   int
}

// Option configures a Library.
type Option func(*Library)

// WithFirstID sets the first identifier value handed out by Create.
func WithFirstID(id h5go.ID) Option {
	return func(l *Library) {
		l.next = id
	}
}

// NewLibrary creates an empty library.
func NewLibrary(opts ...Option) *Library {
	l := &Library{
		objects: make(map[h5go.ID]*object),
		next:    1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Library) enter() {
	if l.active.Add(1) != 1 {
		l.violations.Add(1)
	}
}

func (l *Library) exit() {
	l.active.Add(-1)
}

// GetType implements h5go.Native.
func (l *Library) GetType(id h5go.ID) h5go.IDType {
	l.enter()
	defer l.exit()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.typeCalls++
	if obj, ok := l.objects[id]; ok {
		return obj.typ
	}
	return h5go.BadID
}

// IsValid implements h5go.Native.
func (l *Library) IsValid(id h5go.ID) bool {
	l.enter()
	defer l.exit()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.validCalls++
	obj, ok := l.objects[id]
	return ok && !obj.predefined
}

// IncRef implements h5go.Native.
func (l *Library) IncRef(id h5go.ID) int {
	l.enter()
	defer l.exit()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.incCalls++
	obj, ok := l.objects[id]
	if !ok || obj.predefined {
		return -1
	}
	obj.refs++
	return obj.refs
}

// DecRef implements h5go.Native.
func (l *Library) DecRef(id h5go.ID) int {
	l.enter()
	defer l.exit()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.decCalls++
	obj, ok := l.objects[id]
	if !ok || obj.predefined {
		return -1
	}
	obj.refs--
	if obj.refs == 0 {
		l.releaseLocked(id)
	}
	return obj.refs
}

// GetRef implements h5go.RefCounter. It returns -1 for identifiers that are
// not live or are predefined.
func (l *Library) GetRef(id h5go.ID) int {
	l.enter()
	defer l.exit()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.refCalls++
	obj, ok := l.objects[id]
	if !ok || obj.predefined {
		return -1
	}
	return obj.refs
}

// Create issues an identifier of category t with a reference count of one,
// reusing the most recently released value if there is one.
func (l *Library) Create(t h5go.IDType) h5go.ID {
	l.mu.Lock()
	defer l.mu.Unlock()

	var id h5go.ID
	if n := len(l.freeList); n > 0 {
		id = l.freeList[n-1]
		l.freeList = l.freeList[:n-1]
	} else {
		id = l.next
		l.next++
	}
	l.objects[id] = &object{typ: t, refs: 1}
	return id
}

// CreateID issues the specific identifier id. It panics if id is live.
func (l *Library) CreateID(id h5go.ID, t h5go.IDType) h5go.ID {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.objects[id]; ok {
		panic(fmt.Sprintf("h5itest: id %d is already live", id))
	}
	for i, free := range l.freeList {
		if free == id {
			l.freeList = append(l.freeList[:i], l.freeList[i+1:]...)
			break
		}
	}
	if id >= l.next {
		l.next = id + 1
	}
	l.objects[id] = &object{typ: t, refs: 1}
	return id
}

// Predefined issues a permanently valid, non-reference-counted identifier of
// category t, like a property list class or a native datatype.
func (l *Library) Predefined(t h5go.IDType) h5go.ID {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.next
	l.next++
	l.objects[id] = &object{typ: t, predefined: true}
	return id
}

// Release frees id regardless of its reference count, as closing a file with
// a strong close degree does to the objects inside it.
func (l *Library) Release(id h5go.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if obj, ok := l.objects[id]; ok && !obj.predefined {
		l.releaseLocked(id)
	}
}

func (l *Library) releaseLocked(id h5go.ID) {
	delete(l.objects, id)
	l.freeList = append(l.freeList, id)
}

// RefCount returns the reference count of id, or 0 if it is not live.
func (l *Library) RefCount(id h5go.ID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if obj, ok := l.objects[id]; ok {
		return obj.refs
	}
	return 0
}

// Live returns the number of live reference-counted identifiers.
func (l *Library) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, obj := range l.objects {
		if !obj.predefined {
			n++
		}
	}
	return n
}

// Calls reports how many times each native entry point has been called.
type Calls struct {
	GetType int
	IsValid int
	IncRef  int
	DecRef  int
	GetRef  int
}

// Calls returns the call counters.
func (l *Library) Calls() Calls {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Calls{
		GetType: l.typeCalls,
		IsValid: l.validCalls,
		IncRef:  l.incCalls,
		DecRef:  l.decCalls,
		GetRef:  l.refCalls,
	}
}

// ResetCalls zeroes the call counters.
func (l *Library) ResetCalls() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.typeCalls, l.validCalls, l.incCalls, l.decCalls, l.refCalls = 0, 0, 0, 0, 0
}

// Violations returns how many native calls started while another was in progress.
func (l *Library) Violations() int64 {
	return l.violations.Load()
}
