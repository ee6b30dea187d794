package h5go

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Class describes a typed wrapper built on a Handle: which identifier
// categories it may wrap and how to wrap a validated handle.
type Class[T any] interface {
	// TypeName is the label used in error messages, e.g. "dataset".
	TypeName() string
	// Accepts reports whether identifiers of category t may be wrapped.
	Accepts(t IDType) bool
	// Wrap builds the wrapper from a validated handle. It cannot fail.
	Wrap(h *Handle) T
}

// FromIDLocked wraps id as a T with the runtime lock already held.
//
// The category is checked first, so an id of the wrong type returns a
// *WrongTypeError without touching any reference count. Otherwise the
// result of NewHandle is wrapped, or its error returned.
func FromIDLocked[T any](l *Locked, c Class[T], id ID) (T, error) {
	var zero T
	if t := l.IDType(id); !c.Accepts(t) {
		l.rt.log.Debug("rejected identifier",
			zap.Int64("id", int64(id)),
			zap.Stringer("type", t),
			zap.String("expected", c.TypeName()))
		return zero, &WrongTypeError{Expected: c.TypeName(), ID: id, Got: t}
	}
	h, err := l.NewHandle(id)
	if err != nil {
		return zero, err
	}
	return c.Wrap(h), nil
}

// FromID wraps id as a T, taking the runtime lock for the category check and
// handle construction together.
func FromID[T any](rt *Runtime, c Class[T], id ID) (T, error) {
	var (
		v   T
		err error
	)
	rt.Sync(func(l *Locked) {
		v, err = FromIDLocked(l, c, id)
	})
	return v, err
}

// Object is the untyped wrapper used by the predefined classes below.
type Object struct {
	handle *Handle
	class  string
}

// Handle returns the underlying handle.
func (o *Object) Handle() *Handle {
	return o.handle
}

// ID returns the identifier, or InvalidID once it has been released.
func (o *Object) ID() ID {
	return o.handle.ID()
}

// TypeName returns the name of the class the object was created through.
func (o *Object) TypeName() string {
	return o.class
}

// Type queries the library for the object's current category.
func (o *Object) Type() IDType {
	rt := o.handle.Runtime()
	if rt == nil {
		return BadID
	}
	return rt.IDType(o.ID())
}

// IsValid reports whether the object is still a live library object.
func (o *Object) IsValid() bool {
	return o.handle.IsValidUserID()
}

// Clone returns a new object sharing the identifier, holding its own reference.
func (o *Object) Clone() *Object {
	return &Object{handle: o.handle.Clone(), class: o.class}
}

// Close releases the object's reference.
func (o *Object) Close() error {
	return o.handle.Close()
}

// RefCount returns the library reference count of the object's identifier,
// or 0 if it is not a live object. The count is read from the runtime the
// object belongs to.
func RefCount(o *Object) int {
	rt := o.Handle().Runtime()
	if rt == nil {
		return 0
	}
	n := 0
	rt.Sync(func(l *Locked) {
		n = l.RefCount(o.ID())
	})
	return n
}

func (o *Object) String() string {
	return fmt.Sprintf("%s(id=%d)", o.class, o.ID())
}

type objectClass struct {
	name  string
	types []IDType
}

// ObjectClass returns a Class producing *Object for identifiers of the given
// categories.
func ObjectClass(name string, types ...IDType) Class[*Object] {
	return &objectClass{name: name, types: types}
}

func (c *objectClass) TypeName() string { return c.name }

func (c *objectClass) Accepts(t IDType) bool { return slices.Contains(c.types, t) }

func (c *objectClass) Wrap(h *Handle) *Object { return &Object{handle: h, class: c.name} }

// Predefined classes
var (
	FileClass         = ObjectClass("file", TypeFile)
	GroupClass        = ObjectClass("group", TypeGroup)
	DatasetClass      = ObjectClass("dataset", TypeDataset)
	DatatypeClass     = ObjectClass("datatype", TypeDatatype)
	DataspaceClass    = ObjectClass("dataspace", TypeDataspace)
	AttributeClass    = ObjectClass("attribute", TypeAttr)
	PropertyListClass = ObjectClass("property list", TypeGenPropList)

	// LocationClass accepts anything that can be the location of a link or attribute.
	LocationClass = ObjectClass("location", TypeFile, TypeGroup, TypeDataset, TypeDatatype)
)
