//go:build !ios && !android && (amd64 || arm64)

// Package bindings handles loading libhdf5 and registering function bindings
// using purego.
//
// Nothing in this package serializes access to the library. libhdf5 built
// without --enable-threadsafe is not reentrant, so every call must be made
// while holding the h5go runtime lock.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/h5go/internal/platform"
)

// ErrNotLoaded is returned when HDF5 functions are called before Load().
var ErrNotLoaded = errors.New("h5go: HDF5 library not loaded; call h5go.Init() first")

// ErrLibraryNotFound is returned when libhdf5 cannot be found.
var ErrLibraryNotFound = errors.New("h5go: HDF5 library not found")

// ErrUnsupportedVersion is returned when the loaded libhdf5 is older than 1.12.
var ErrUnsupportedVersion = errors.New("h5go: unsupported HDF5 version")

// ErrSymbolNotFound is returned by GlobalID when the library does not export the symbol.
var ErrSymbolNotFound = errors.New("h5go: symbol not found")

// EnvLibDir names the environment variable searched before the system paths.
const EnvLibDir = "H5GO_LIB_DIR"

// sonameVersions lists the libhdf5 ABI versions tried, newest first.
// 310 is HDF5 1.14, 200 is HDF5 1.12.
var sonameVersions = []int{320, 310, 300, 200}

var (
	loadOnce sync.Once

	// loadMu guards the load state below.
	loadMu  sync.Mutex
	libHDF5 uintptr
	libPath string
	loaded  bool
	loadErr error

	major, minor, release uint32
)

// Function bindings
var (
	h5open          func() int32
	h5getLibversion func(maj, min, rel *uint32) int32
	h5eSetAuto2     func(estack int64, fn uintptr, data uintptr) int32

	h5iGetType func(id int64) int32
	h5iIsValid func(id int64) int32
	h5iIncRef  func(id int64) int32
	h5iDecRef  func(id int64) int32
	h5iGetRef  func(id int64) int32

	h5pCreate func(cls int64) int64
	h5pClose  func(plist int64) int32
)

// IsLoaded returns true if libhdf5 has been successfully loaded.
func IsLoaded() bool {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loaded
}

// Load loads libhdf5 and registers all function bindings.
// It is safe to call multiple times; subsequent calls are no-ops.
// Returns an error if the library cannot be found, loaded or is too old.
func Load() error {
	loadOnce.Do(func() {
		loadMu.Lock()
		defer loadMu.Unlock()
		loadErr = doLoad()
		loaded = loadErr == nil
	})
	return LoadError()
}

// LoadError returns the error from Load, or nil if it succeeded or has not
// been called.
func LoadError() error {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loadErr
}

// doLoad runs with loadMu held.
func doLoad() error {
	lib, path, err := loadLibrary("hdf5", sonameVersions)
	if err != nil {
		return fmt.Errorf("loading libhdf5: %w", err)
	}
	libHDF5 = lib
	libPath = path

	purego.RegisterLibFunc(&h5open, lib, "H5open")
	purego.RegisterLibFunc(&h5getLibversion, lib, "H5get_libversion")
	purego.RegisterLibFunc(&h5eSetAuto2, lib, "H5Eset_auto2")

	purego.RegisterLibFunc(&h5iGetType, lib, "H5Iget_type")
	purego.RegisterLibFunc(&h5iIsValid, lib, "H5Iis_valid")
	purego.RegisterLibFunc(&h5iIncRef, lib, "H5Iinc_ref")
	purego.RegisterLibFunc(&h5iDecRef, lib, "H5Idec_ref")
	purego.RegisterLibFunc(&h5iGetRef, lib, "H5Iget_ref")

	purego.RegisterLibFunc(&h5pCreate, lib, "H5Pcreate")
	purego.RegisterLibFunc(&h5pClose, lib, "H5Pclose")

	if ret := h5open(); ret < 0 {
		return fmt.Errorf("H5open failed (code %d)", ret)
	}
	if ret := h5getLibversion(&major, &minor, &release); ret < 0 {
		return fmt.Errorf("H5get_libversion failed (code %d)", ret)
	}
	if major < 1 || (major == 1 && minor < 12) {
		return fmt.Errorf("%w: %d.%d.%d (need 1.12 or newer)", ErrUnsupportedVersion, major, minor, release)
	}

	// Querying a dead id pushes onto the error stack; the library prints it
	// to stderr unless automatic reporting is switched off.
	h5eSetAuto2(0, 0, 0)
	return nil
}

// loadLibrary attempts to load a library by trying versioned names.
func loadLibrary(name string, versions []int) (uintptr, string, error) {
	for _, searchPath := range platform.SearchPaths(os.Getenv(EnvLibDir)) {
		for _, ver := range versions {
			fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, ver))
			if lib, err := tryOpen(fullPath); err == nil {
				return lib, fullPath, nil
			}
		}

		fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, 0))
		if lib, err := tryOpen(fullPath); err == nil {
			return lib, fullPath, nil
		}
	}

	// Let the dynamic loader search its own paths.
	for _, ver := range versions {
		libName := platform.FormatLibraryName(name, ver)
		if lib, err := tryOpen(libName); err == nil {
			return lib, libName, nil
		}
	}

	libName := platform.FormatLibraryName(name, 0)
	if lib, err := tryOpen(libName); err == nil {
		return lib, libName, nil
	}

	return 0, "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// FindLibrary searches for libhdf5 and returns its full path without loading it.
// This is useful for diagnostics.
func FindLibrary() (string, error) {
	for _, searchPath := range platform.SearchPaths(os.Getenv(EnvLibDir)) {
		for _, ver := range sonameVersions {
			fullPath := filepath.Join(searchPath, platform.FormatLibraryName("hdf5", ver))
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
		fullPath := filepath.Join(searchPath, platform.FormatLibraryName("hdf5", 0))
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w: hdf5", ErrLibraryNotFound)
}

// Path returns the path libhdf5 was loaded from, or "" if not loaded.
func Path() string {
	loadMu.Lock()
	defer loadMu.Unlock()
	return libPath
}

// Version returns the loaded library version, or zeros if not loaded.
func Version() (maj, min, rel uint32) {
	loadMu.Lock()
	defer loadMu.Unlock()
	if !loaded {
		return 0, 0, 0
	}
	return major, minor, release
}

// Status returns a human-readable status of the library.
func Status() string {
	loadMu.Lock()
	defer loadMu.Unlock()
	if loaded {
		return fmt.Sprintf("HDF5 %d.%d.%d loaded from %s", major, minor, release, libPath)
	}
	if loadErr != nil {
		return fmt.Sprintf("not loaded: %s", loadErr)
	}
	return "not loaded (Load() not called)"
}

// IGetType wraps H5Iget_type.
func IGetType(id int64) int32 {
	if h5iGetType == nil {
		return -1
	}
	return h5iGetType(id)
}

// IIsValid wraps H5Iis_valid. Positive is true, zero false, negative an error.
func IIsValid(id int64) int32 {
	if h5iIsValid == nil {
		return -1
	}
	return h5iIsValid(id)
}

// IIncRef wraps H5Iinc_ref and returns the new count, or a negative value on failure.
func IIncRef(id int64) int32 {
	if h5iIncRef == nil {
		return -1
	}
	return h5iIncRef(id)
}

// IDecRef wraps H5Idec_ref and returns the new count, or a negative value on failure.
func IDecRef(id int64) int32 {
	if h5iDecRef == nil {
		return -1
	}
	return h5iDecRef(id)
}

// IGetRef wraps H5Iget_ref.
func IGetRef(id int64) int32 {
	if h5iGetRef == nil {
		return -1
	}
	return h5iGetRef(id)
}

// PCreate wraps H5Pcreate. Returns -1 on failure.
func PCreate(cls int64) int64 {
	if h5pCreate == nil {
		return -1
	}
	return h5pCreate(cls)
}

// PClose wraps H5Pclose.
func PClose(plist int64) error {
	if h5pClose == nil {
		return ErrNotLoaded
	}
	if ret := h5pClose(plist); ret < 0 {
		return fmt.Errorf("H5Pclose(%d) failed (code %d)", plist, ret)
	}
	return nil
}

// GlobalID reads a library-global hid_t such as "H5P_CLS_FILE_ACCESS_ID_g"
// or "H5T_NATIVE_INT_g". These are predefined ids, initialised by H5open.
func GlobalID(symbol string) (int64, error) {
	loadMu.Lock()
	lib, ok := libHDF5, loaded
	loadMu.Unlock()
	if !ok {
		return -1, ErrNotLoaded
	}
	addr, err := purego.Dlsym(lib, symbol)
	if err != nil || addr == 0 {
		return -1, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	// addr is a Dlsym address in libhdf5's data segment, never Go memory.
	return *(*int64)(unsafe.Add(unsafe.Pointer(nil), addr)), nil
}
