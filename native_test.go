//go:build !ios && !android && (amd64 || arm64)

package h5go_test

import (
	"os"
	"testing"

	"github.com/obinnaokechukwu/h5go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hdf5Available bool

func TestMain(m *testing.M) {
	if err := h5go.Init(); err == nil {
		hdf5Available = true
	}
	os.Exit(m.Run())
}

func skipIfNoHDF5(t *testing.T) {
	t.Helper()
	if !hdf5Available {
		t.Skip("HDF5 not available")
	}
}

func TestDefaultRuntimeIsProcessWide(t *testing.T) {
	skipIfNoHDF5(t)
	a, err := h5go.Default()
	require.NoError(t, err)
	b, err := h5go.Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.True(t, h5go.IsLoaded())
	t.Log(h5go.LibraryStatus())
}

func TestPackageLevelPredicates(t *testing.T) {
	skipIfNoHDF5(t)
	assert.Equal(t, h5go.BadID, h5go.GetIDType(0))
	assert.False(t, h5go.IsValidID(h5go.InvalidID))
	assert.False(t, h5go.IsValidUserID(h5go.InvalidID))

	_, err := h5go.NewHandle(h5go.InvalidID)
	assert.True(t, h5go.IsInvalidHandle(err))
}

func TestPredefinedDatatypeIsNotUserValid(t *testing.T) {
	skipIfNoHDF5(t)
	nativeInt, err := h5go.GlobalID("H5T_NATIVE_INT_g")
	require.NoError(t, err)

	assert.Equal(t, h5go.TypeDatatype, h5go.GetIDType(nativeInt))
	assert.True(t, h5go.IsValidID(nativeInt))
	assert.False(t, h5go.IsValidUserID(nativeInt))

	_, err = h5go.NewHandle(nativeInt)
	assert.True(t, h5go.IsInvalidHandle(err))
}

func TestPropertyListLifecycle(t *testing.T) {
	skipIfNoHDF5(t)
	plist, err := h5go.NewPropertyList("H5P_CLS_FILE_ACCESS_ID_g")
	require.NoError(t, err)
	id := plist.ID()
	assert.Equal(t, h5go.TypeGenPropList, plist.Type())
	assert.Equal(t, 1, h5go.RefCount(plist))

	dup := plist.Clone()
	assert.Equal(t, id, dup.ID())
	assert.Equal(t, 2, h5go.RefCount(plist))

	require.NoError(t, dup.Close())
	assert.Equal(t, 1, h5go.RefCount(plist))
	assert.Equal(t, id, plist.ID())

	require.NoError(t, plist.Close())
	assert.Equal(t, h5go.InvalidID, plist.ID())
	assert.Equal(t, h5go.InvalidID, dup.ID())
	assert.Equal(t, 0, h5go.RefCount(plist))
}

func TestPropertyListFromWrongClass(t *testing.T) {
	skipIfNoHDF5(t)
	_, err := h5go.NewPropertyList("H5T_NATIVE_INT_g")
	assert.True(t, h5go.IsWrongType(err))
}
