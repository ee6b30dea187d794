//go:build ios || android || !(amd64 || arm64)

package h5go

import "errors"

// Load errors
var (
	// ErrNotLoaded indicates libhdf5 is not loaded.
	ErrNotLoaded = errors.New("h5go: HDF5 library not loaded; call h5go.Init() first")

	// ErrLibraryNotFound indicates libhdf5 could not be found.
	ErrLibraryNotFound = errors.New("h5go: HDF5 library not found")

	// ErrUnsupportedVersion indicates the loaded libhdf5 is older than 1.12.
	ErrUnsupportedVersion = errors.New("h5go: unsupported HDF5 version")

	// ErrUnsupportedPlatform indicates purego cannot load libraries on this platform.
	ErrUnsupportedPlatform = errors.New("h5go: platform not supported")
)

func loadNative() (Native, error) {
	return nil, ErrUnsupportedPlatform
}

// IsLoaded always returns false on unsupported platforms.
func IsLoaded() bool { return false }

// Version always returns zeros on unsupported platforms.
func Version() (major, minor, release uint32) { return 0, 0, 0 }

// LibraryStatus describes why the library is unavailable.
func LibraryStatus() string { return ErrUnsupportedPlatform.Error() }

// GlobalID always fails on unsupported platforms.
func GlobalID(symbol string) (ID, error) { return InvalidID, ErrUnsupportedPlatform }

// NewPropertyList always fails on unsupported platforms.
func NewPropertyList(classSymbol string) (*Object, error) { return nil, ErrUnsupportedPlatform }
