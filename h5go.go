// Package h5go provides reference-counted handles over libhdf5 identifiers
// without cgo, using purego.
//
// libhdf5 hands out integer identifiers (hid_t) and keeps its own reference
// count for each. It may release an identifier behind a holder's back and
// reuse the value for an unrelated object. A Handle owns one library
// reference and shares a cell with every other handle that resolved the same
// live identifier, so a release is seen by all of them at once.
//
// All calls into the library go through a Runtime, which serializes them
// behind a single lock. The default runtime binds the system libhdf5; tests
// and alternative backends build their own with NewRuntime.
package h5go

import (
	"sync"

	"go.uber.org/zap"
)

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
	defaultErr     error
)

// Default returns the process-wide runtime bound to the system libhdf5,
// loading the library on first use.
//
// The default runtime and its registry are never torn down. Their lifetime
// matches that of the library's own global identifier tables, which also live
// until process exit; a registry dropped earlier could hand out a second cell
// for an identifier that existing handles still share.
func Default() (*Runtime, error) {
	defaultOnce.Do(func() {
		native, err := loadNative()
		if err != nil {
			defaultErr = err
			return
		}
		defaultRuntime = NewRuntime(native)
		maj, min, rel := Version()
		defaultRuntime.log.Info("loaded HDF5",
			zap.Uint32("major", maj),
			zap.Uint32("minor", min),
			zap.Uint32("release", rel))
	})
	return defaultRuntime, defaultErr
}

// Init loads libhdf5. This is called automatically by the package-level
// helpers, but can be called explicitly to check for errors.
// It is safe to call multiple times.
func Init() error {
	_, err := Default()
	return err
}

// NewHandle validates id against the default runtime and returns a handle
// that takes over one library reference to it.
func NewHandle(id ID) (*Handle, error) {
	rt, err := Default()
	if err != nil {
		return nil, err
	}
	return rt.NewHandle(id)
}

// GetIDType returns the category of id, or BadID if the library is not loaded.
func GetIDType(id ID) IDType {
	rt, err := Default()
	if err != nil {
		return BadID
	}
	return rt.IDType(id)
}

// IsValidID reports whether id has a recognised category.
func IsValidID(id ID) bool {
	return GetIDType(id).InRange()
}

// IsValidUserID reports whether id is a live, reference-counted object.
func IsValidUserID(id ID) bool {
	rt, err := Default()
	if err != nil {
		return false
	}
	return rt.IsValidUserID(id)
}
