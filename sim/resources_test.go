package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBedPool_IsolationRoomsAtEnds(t *testing.T) {
	bp := NewBedPool(5)
	assert.Equal(t, BedIsolation, bp.Get(1).Type)
	assert.Equal(t, BedStandard, bp.Get(2).Type)
	assert.Equal(t, BedStandard, bp.Get(4).Type)
	assert.Equal(t, BedIsolation, bp.Get(5).Type)
}

func TestBedPool_Select_IdOrder(t *testing.T) {
	bp := NewBedPool(5)

	b := bp.Select(false, 0)
	require.NotNil(t, b)
	assert.Equal(t, 1, b.ID)

	b.Occupied = true
	b = bp.Select(false, 0)
	require.NotNil(t, b)
	assert.Equal(t, 2, b.ID)
}

func TestBedPool_Select_IsolationPreference(t *testing.T) {
	// GIVEN bed 1 taken, beds 2..4 standard, bed 5 isolation
	bp := NewBedPool(5)
	bp.Get(1).Occupied = true

	// WHEN an isolation patient selects
	// THEN the remaining isolation room wins over lower-id standard beds
	b := bp.Select(true, 0)
	require.NotNil(t, b)
	assert.Equal(t, 5, b.ID)

	// WHEN both isolation rooms are taken
	// THEN the patient falls back to the lowest-id standard bed
	b.Occupied = true
	b = bp.Select(true, 0)
	require.NotNil(t, b)
	assert.Equal(t, 2, b.ID)
}

func TestBedPool_Select_SkipsCleaningAndHold(t *testing.T) {
	bp := NewBedPool(1)
	bed := bp.Get(1)

	bed.Cleaning = true
	assert.Nil(t, bp.Select(false, 0))

	bed.Cleaning = false
	bed.AvailableAt = 100
	assert.Nil(t, bp.Select(false, 50))
	assert.NotNil(t, bp.Select(false, 100))
}

func TestBedPool_Select_Exhausted(t *testing.T) {
	bp := NewBedPool(2)
	bp.Get(1).Occupied = true
	bp.Get(2).Occupied = true
	assert.Nil(t, bp.Select(false, 0))
	assert.Equal(t, 2, bp.Occupied())
}

func TestNursePool_Select_LeastLoaded_TiesById(t *testing.T) {
	np := NewNursePool(3, 4)

	// GIVEN uneven loads: nurse 1 has 2, nurse 2 has 1, nurse 3 has 1
	np.Assign(np.Nurses()[0], 10)
	np.Assign(np.Nurses()[0], 11)
	np.Assign(np.Nurses()[1], 12)
	np.Assign(np.Nurses()[2], 13)

	// THEN the tie between nurses 2 and 3 resolves to the lower id
	n := np.Select()
	require.NotNil(t, n)
	assert.Equal(t, 2, n.ID)
}

func TestNursePool_Select_NilWhenAllFull(t *testing.T) {
	np := NewNursePool(2, 1)
	np.Assign(np.Nurses()[0], 1)
	np.Assign(np.Nurses()[1], 2)
	assert.Nil(t, np.Select())
}

func TestNursePool_ReleaseLowersLoad(t *testing.T) {
	np := NewNursePool(1, 4)
	n := np.Nurses()[0]
	np.Assign(n, 7)
	np.Assign(n, 8)
	assert.Equal(t, 2, n.Load())

	np.Release(1, 7)
	assert.Equal(t, 1, n.Load())
	assert.Equal(t, []int{8}, n.Assigned)

	// releasing an id that is not assigned is a no-op
	np.Release(1, 99)
	assert.Equal(t, 1, n.Load())
}

func TestNursePool_MeanLoad(t *testing.T) {
	np := NewNursePool(2, 4)
	np.Assign(np.Nurses()[0], 1)
	np.Assign(np.Nurses()[0], 2)
	np.Assign(np.Nurses()[1], 3)
	assert.InDelta(t, 1.5, np.MeanLoad(), 1e-9)
}

func TestSlotPool_CapacityScaling(t *testing.T) {
	assert.Equal(t, 2, NewSlotPool(1.0).Capacity)
	assert.Equal(t, 4, NewSlotPool(2.0).Capacity)
	assert.Equal(t, 0, NewSlotPool(0.2).Capacity)
	assert.Equal(t, 1, NewSlotPool(0.5).Capacity)
}

func TestSlotPool_AcquireRelease_HandsSlotToWaiter(t *testing.T) {
	sp := NewSlotPool(1.0) // 2 slots

	require.True(t, sp.TryAcquire())
	require.True(t, sp.TryAcquire())
	require.False(t, sp.TryAcquire())

	sp.Wait.Enqueue(42)

	// WHEN a slot frees up with a waiter parked
	// THEN the waiter acquires immediately and the slot stays busy
	next, ok := sp.Release()
	require.True(t, ok)
	assert.Equal(t, 42, next)
	assert.Equal(t, 2, sp.InUse)

	// with no waiters the slot just frees
	_, ok = sp.Release()
	assert.False(t, ok)
	assert.Equal(t, 1, sp.InUse)
}

func TestSlotPool_ZeroCapacityNeverAcquires(t *testing.T) {
	sp := NewSlotPool(0.2)
	assert.False(t, sp.TryAcquire())
}
