package sim

// BedPool holds the unit's beds in id order plus the bed-wait FIFO.
// Beds 1 and N are isolation rooms.
type BedPool struct {
	beds []*Bed
	Wait WaitQueue
}

// NewBedPool builds n beds with stable ids 1..n.
func NewBedPool(n int) *BedPool {
	beds := make([]*Bed, n)
	for i := range beds {
		id := i + 1
		bt := BedStandard
		if id == 1 || id == n {
			bt = BedIsolation
		}
		beds[i] = &Bed{ID: id, Type: bt}
	}
	return &BedPool{beds: beds}
}

// Get returns the bed with the given id, or nil.
func (bp *BedPool) Get(id int) *Bed {
	if id < 1 || id > len(bp.beds) {
		return nil
	}
	return bp.beds[id-1]
}

// Beds returns the pool contents in id order. Callers must not grow or
// reorder the returned slice.
func (bp *BedPool) Beds() []*Bed {
	return bp.beds
}

// Len returns the pool size.
func (bp *BedPool) Len() int {
	return len(bp.beds)
}

// Occupied counts currently occupied beds.
func (bp *BedPool) Occupied() int {
	var n int
	for _, b := range bp.beds {
		if b.Occupied {
			n++
		}
	}
	return n
}

// Select picks a bed for an arriving patient, or nil when none is free.
// Isolation patients scan the isolation rooms first, then fall back to the
// full id-order scan. A bed is free when it is neither occupied nor
// cleaning and its cleaning hold has elapsed.
func (bp *BedPool) Select(isolation bool, now float64) *Bed {
	free := func(b *Bed) bool {
		return !b.Occupied && !b.Cleaning && b.AvailableAt <= now
	}
	if isolation {
		for _, b := range bp.beds {
			if b.Type == BedIsolation && free(b) {
				return b
			}
		}
	}
	for _, b := range bp.beds {
		if free(b) {
			return b
		}
	}
	return nil
}

// NursePool holds the day-shift nurses.
type NursePool struct {
	nurses []*Nurse
}

// NewNursePool builds m nurses with ids 1..m and the default ratio cap.
func NewNursePool(m, maxPatients int) *NursePool {
	nurses := make([]*Nurse, m)
	for i := range nurses {
		nurses[i] = &Nurse{ID: i + 1, MaxPatients: maxPatients}
	}
	return &NursePool{nurses: nurses}
}

// Nurses returns the pool contents in id order.
func (np *NursePool) Nurses() []*Nurse {
	return np.nurses
}

// Select returns the nurse with the lowest assigned count still under
// MaxPatients, ties broken by id. Returns nil when every nurse is full;
// the caller records a staffing bottleneck and the patient keeps flowing.
func (np *NursePool) Select() *Nurse {
	var best *Nurse
	for _, n := range np.nurses {
		if n.Load() >= n.MaxPatients {
			continue
		}
		if best == nil || n.Load() < best.Load() {
			best = n
		}
	}
	return best
}

// Assign adds the patient to the nurse's list.
func (np *NursePool) Assign(n *Nurse, patientID int) {
	n.Assigned = append(n.Assigned, patientID)
}

// Release removes the patient from the nurse's list, if present.
func (np *NursePool) Release(nurseID, patientID int) {
	if nurseID < 1 || nurseID > len(np.nurses) {
		return
	}
	n := np.nurses[nurseID-1]
	for i, id := range n.Assigned {
		if id == patientID {
			n.Assigned = append(n.Assigned[:i], n.Assigned[i+1:]...)
			return
		}
	}
}

// MeanLoad returns the mean assigned count across the pool.
func (np *NursePool) MeanLoad() float64 {
	if len(np.nurses) == 0 {
		return 0
	}
	var total int
	for _, n := range np.nurses {
		total += n.Load()
	}
	return float64(total) / float64(len(np.nurses))
}

// SlotPool is a counted resource (imaging machines, transport teams) with
// a FIFO of waiters behind it.
type SlotPool struct {
	Capacity int
	InUse    int
	Wait     WaitQueue
}

// NewSlotPool scales a capacity multiplier to floor(2*x) concurrent slots.
func NewSlotPool(multiplier float64) *SlotPool {
	return &SlotPool{Capacity: int(multiplier * 2)}
}

// TryAcquire takes a slot if one is free.
func (sp *SlotPool) TryAcquire() bool {
	if sp.InUse < sp.Capacity {
		sp.InUse++
		return true
	}
	return false
}

// Release frees a slot. If waiters exist the head of the line acquires
// immediately and its id is returned; the caller schedules its service
// completion.
func (sp *SlotPool) Release() (next int, ok bool) {
	if sp.InUse > 0 {
		sp.InUse--
	}
	if id, found := sp.Wait.Dequeue(); found {
		sp.InUse++
		return id, true
	}
	return 0, false
}
