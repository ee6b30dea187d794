//go:build !ios && !android && (amd64 || arm64)

package h5go

import (
	"fmt"

	"github.com/obinnaokechukwu/h5go/internal/bindings"
)

// Load errors
var (
	// ErrNotLoaded indicates libhdf5 is not loaded.
	ErrNotLoaded = bindings.ErrNotLoaded

	// ErrLibraryNotFound indicates libhdf5 could not be found.
	ErrLibraryNotFound = bindings.ErrLibraryNotFound

	// ErrUnsupportedVersion indicates the loaded libhdf5 is older than 1.12.
	ErrUnsupportedVersion = bindings.ErrUnsupportedVersion
)

// hdf5Native calls straight into libhdf5.
type hdf5Native struct{}

func loadNative() (Native, error) {
	if err := bindings.Load(); err != nil {
		return nil, err
	}
	return hdf5Native{}, nil
}

func (hdf5Native) GetType(id ID) IDType { return IDType(bindings.IGetType(int64(id))) }

func (hdf5Native) IsValid(id ID) bool { return bindings.IIsValid(int64(id)) > 0 }

func (hdf5Native) IncRef(id ID) int { return int(bindings.IIncRef(int64(id))) }

func (hdf5Native) DecRef(id ID) int { return int(bindings.IDecRef(int64(id))) }

func (hdf5Native) GetRef(id ID) int { return int(bindings.IGetRef(int64(id))) }

// IsLoaded returns true if libhdf5 has been successfully loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// Version returns the loaded libhdf5 version, or zeros if not loaded.
func Version() (major, minor, release uint32) {
	return bindings.Version()
}

// LibraryStatus returns a human-readable description of the loaded library.
func LibraryStatus() string {
	return bindings.Status()
}

// GlobalID returns a predefined identifier exported by libhdf5, such as
// "H5T_NATIVE_INT_g" or "H5P_CLS_FILE_ACCESS_ID_g".
func GlobalID(symbol string) (ID, error) {
	if err := Init(); err != nil {
		return InvalidID, err
	}
	id, err := bindings.GlobalID(symbol)
	if err != nil {
		return InvalidID, err
	}
	return ID(id), nil
}

// NewPropertyList creates a property list of the class named by classSymbol
// (for example "H5P_CLS_FILE_ACCESS_ID_g") on the default runtime.
func NewPropertyList(classSymbol string) (*Object, error) {
	cls, err := GlobalID(classSymbol)
	if err != nil {
		return nil, err
	}
	rt, err := Default()
	if err != nil {
		return nil, err
	}

	var obj *Object
	rt.Sync(func(l *Locked) {
		if l.IDType(cls) != TypeGenPropClass {
			err = &WrongTypeError{Expected: "property list class", ID: cls, Got: l.IDType(cls)}
			return
		}
		id := ID(bindings.PCreate(int64(cls)))
		if id < 0 {
			err = fmt.Errorf("h5go: H5Pcreate(%s) failed", classSymbol)
			return
		}
		obj, err = FromIDLocked(l, PropertyListClass, id)
		if err != nil {
			_ = bindings.PClose(int64(id))
		}
	})
	return obj, err
}
