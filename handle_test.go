package h5go_test

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/obinnaokechukwu/h5go"
	"github.com/obinnaokechukwu/h5go/h5itest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandleValidID(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)

	for _, typ := range []h5go.IDType{h5go.TypeFile, h5go.TypeDataset, h5go.TypeGenPropList} {
		id := lib.Create(typ)
		h, err := rt.NewHandle(id)
		require.NoError(t, err)
		assert.Equal(t, id, h.ID())
		assert.True(t, h.IsValidUserID())
		assert.True(t, h.IsValidID())
		require.NoError(t, h.Close())
	}
}

func TestNewHandleRejectsNonUserIDs(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)

	tests := []struct {
		name string
		id   h5go.ID
	}{
		{"invalid sentinel", h5go.InvalidID},
		{"zero", 0},
		{"never issued", 12345},
		{"predefined", lib.Predefined(h5go.TypeDatatype)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := rt.NewHandle(tt.id)
			assert.Nil(t, h)
			require.ErrorIs(t, err, h5go.ErrInvalidHandle)

			var invalid *h5go.InvalidHandleError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.id, invalid.ID)
		})
	}
	assert.Equal(t, 0, rt.RegistrySize(), "rejected ids must not reach the registry")
}

func TestCloneThenCloseKeepsOriginal(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.Create(h5go.TypeGroup)

	h, err := rt.NewHandle(id)
	require.NoError(t, err)
	defer h.Close()

	c := h.Clone()
	assert.True(t, c.Shares(h))
	assert.Equal(t, 2, lib.RefCount(id))

	require.NoError(t, c.Close())
	assert.Equal(t, id, h.ID())
	assert.True(t, h.IsValidUserID())
	assert.Equal(t, 1, lib.RefCount(id))
}

func TestClosedHandleHoldsNothing(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.Create(h5go.TypeGroup)

	h, err := rt.NewHandle(id)
	require.NoError(t, err)
	c := h.Clone()
	defer c.Close()

	require.NoError(t, h.Close())
	assert.Equal(t, h5go.InvalidID, h.ID())
	assert.False(t, h.IsValidUserID())
	assert.False(t, h.IsValidID())
	assert.Equal(t, "handle(id=-1)", h.String())
	assert.Equal(t, h5go.InvalidID, h.Clone().ID())

	assert.Equal(t, id, c.ID(), "co-owner keeps the identifier")
	assert.True(t, c.IsValidUserID())
	assert.Equal(t, 1, lib.RefCount(id))
}

func TestLastCloseInvalidatesCoOwners(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.Create(h5go.TypeDataset)

	// Two handles over one library reference share the cell.
	a, err := rt.NewHandle(id)
	require.NoError(t, err)
	b, err := rt.NewHandle(id)
	require.NoError(t, err)
	require.True(t, a.Shares(b))

	require.NoError(t, a.Close())
	assert.Equal(t, h5go.InvalidID, b.ID())
	assert.False(t, b.IsValidID())
	assert.False(t, b.IsValidUserID())

	lib.ResetCalls()
	require.NoError(t, b.Close())
	assert.Zero(t, lib.Calls().DecRef, "closing an invalidated handle must not reach the library")
}

func TestCloseTwiceDecrementsOnce(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.Create(h5go.TypeFile)
	lib.IncRef(id)

	h, err := rt.NewHandle(id)
	require.NoError(t, err)
	lib.ResetCalls()

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.True(t, h.Closed())
	assert.Equal(t, 1, lib.Calls().DecRef)
	assert.Equal(t, 1, lib.RefCount(id))
}

func TestInvalidHandle(t *testing.T) {
	h := h5go.InvalidHandle()
	assert.Equal(t, h5go.InvalidID, h.ID())
	assert.False(t, h.IsValidID())
	assert.False(t, h.IsValidUserID())
	assert.Nil(t, h.Runtime())
	assert.Equal(t, h5go.InvalidID, h.Clone().ID())
	assert.NoError(t, h.Close())
	assert.Equal(t, "handle(id=-1)", h.String())

	rt, lib := h5itest.NewRuntime(t)
	ri := rt.InvalidHandle()
	assert.Equal(t, h5go.InvalidID, ri.ID())
	assert.False(t, ri.Shares(rt.InvalidHandle()), "invalid handles never alias")
	assert.NoError(t, ri.Close())
	assert.Equal(t, 0, rt.RegistrySize())
	assert.Zero(t, lib.Calls().DecRef)
}

func TestInvalidate(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.Create(h5go.TypeDataspace)

	h, err := rt.NewHandle(id)
	require.NoError(t, err)
	c := h.Clone()

	h.Invalidate()
	assert.Equal(t, h5go.InvalidID, c.ID())
	assert.Equal(t, 2, lib.RefCount(id), "Invalidate does not touch the library refcount")
}

func TestCloneOfClosedHandle(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.Create(h5go.TypeFile)
	lib.IncRef(id)

	h, err := rt.NewHandle(id)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	lib.ResetCalls()

	c := h.Clone()
	assert.Equal(t, h5go.InvalidID, c.ID())
	assert.Zero(t, lib.Calls().IncRef)
}

func TestCloneDegradesWhenReleasedUnderneath(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.Create(h5go.TypeAttr)

	h, err := rt.NewHandle(id)
	require.NoError(t, err)
	lib.Release(id)
	lib.ResetCalls()

	c := h.Clone()
	assert.Equal(t, h5go.InvalidID, c.ID())
	assert.False(t, c.Shares(h))
	assert.Zero(t, lib.Calls().IncRef)

	require.NoError(t, h.Close())
	assert.Equal(t, h5go.InvalidID, h.ID())
}

func TestEndToEndRefcounting(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.CreateID(100, h5go.TypeDataset)

	h, err := rt.NewHandle(100)
	require.NoError(t, err)
	assert.Equal(t, h5go.ID(100), h.ID())
	lib.ResetCalls()

	c := h.Clone()
	assert.Equal(t, 1, lib.Calls().IncRef)
	assert.Equal(t, 0, lib.Calls().DecRef)

	require.NoError(t, c.Close())
	assert.Equal(t, 1, lib.Calls().DecRef)
	assert.Equal(t, h5go.ID(100), h.ID())

	require.NoError(t, h.Close())
	assert.Equal(t, 2, lib.Calls().DecRef)
	assert.Equal(t, 1, lib.Calls().IncRef)
	assert.Equal(t, 0, lib.RefCount(id))
	assert.Equal(t, h5go.InvalidID, h.ID())
	assert.Equal(t, h5go.InvalidID, c.ID())
}

func TestConcurrentCloneAndClose(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.Create(h5go.TypeDataset)

	h, err := rt.NewHandle(id)
	require.NoError(t, err)

	const numGoroutines = 50
	const numOps = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				c := h.Clone()
				if c.ID() != id {
					t.Errorf("clone has id %d, want %d", c.ID(), id)
				}
				c.Close()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, id, h.ID())
	assert.Equal(t, 1, lib.RefCount(id))
	assert.Zero(t, lib.Violations())
	require.NoError(t, h.Close())
	assert.Equal(t, 0, lib.Live())
}

func TestLeakedHandleIsClosedByFinalizer(t *testing.T) {
	rt, lib := h5itest.NewRuntime(t)
	id := lib.Create(h5go.TypeGroup)

	func() {
		h, err := rt.NewHandle(id)
		require.NoError(t, err)
		_ = h
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return lib.RefCount(id) == 0
	}, 5*time.Second, 10*time.Millisecond)
}
