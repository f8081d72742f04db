package sim

import "container/heap"

// EventQueue implements heap.Interface and orders events by
// (Time, Seq). Seq is assigned at insertion, so ties on virtual time
// resolve in insertion order and the pop sequence is fully deterministic.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []*SimEvent

func (eq EventQueue) Len() int { return len(eq) }

func (eq EventQueue) Less(i, j int) bool {
	if eq[i].Time != eq[j].Time {
		return eq[i].Time < eq[j].Time
	}
	return eq[i].Seq < eq[j].Seq
}

func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(*SimEvent))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*eq = old[0 : n-1]
	return item
}

// pushEvent and popEvent wrap container/heap so callers cannot bypass the
// (Time, Seq) ordering.
func pushEvent(eq *EventQueue, ev *SimEvent) {
	heap.Push(eq, ev)
}

func popEvent(eq *EventQueue) *SimEvent {
	return heap.Pop(eq).(*SimEvent)
}

// WaitQueue is a FIFO of entity ids waiting on a contended resource.
// Patients denied a bed or an imaging/transport slot park here until a
// release hands the resource to the head of the line.
type WaitQueue struct {
	ids []int
}

// Enqueue adds an id to the back of the queue.
func (wq *WaitQueue) Enqueue(id int) {
	wq.ids = append(wq.ids, id)
}

// Dequeue removes and returns the id at the front of the queue.
// The second return is false when the queue is empty.
func (wq *WaitQueue) Dequeue() (int, bool) {
	if len(wq.ids) == 0 {
		return 0, false
	}
	id := wq.ids[0]
	wq.ids = wq.ids[1:]
	return id, true
}

// Len returns the number of waiting ids.
func (wq *WaitQueue) Len() int {
	return len(wq.ids)
}
