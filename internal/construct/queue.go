package construct

import "container/heap"

// pqItem is one exam waiting to be placed, prioritised by the size of its
// remaining feasible-period set (smallest first — "saturation degree"),
// randomised on ties via a per-item tiebreak drawn at enqueue time.
type pqItem struct {
	exam      int
	available int
	tiebreak  float64
	index     int
}

// examQueue is a min-heap of pqItem ordered by (available, tiebreak).
type examQueue struct {
	items []*pqItem
	byID  map[int]*pqItem
}

func newExamQueue() *examQueue {
	return &examQueue{byID: make(map[int]*pqItem)}
}

func (q *examQueue) Len() int { return len(q.items) }

func (q *examQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.available != b.available {
		return a.available < b.available
	}
	return a.tiebreak < b.tiebreak
}

func (q *examQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *examQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.index = len(q.items)
	q.items = append(q.items, item)
	q.byID[item.exam] = item
}

func (q *examQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	delete(q.byID, item.exam)
	return item
}

// Insert adds exam to the queue with the given available-period count and
// tiebreak key.
func (q *examQueue) Insert(exam, available int, tiebreak float64) {
	heap.Push(q, &pqItem{exam: exam, available: available, tiebreak: tiebreak})
}

// PopMin removes and returns the highest-priority (most constrained) exam.
func (q *examQueue) PopMin() (exam, available int) {
	item := heap.Pop(q).(*pqItem)
	return item.exam, item.available
}

// Update adjusts exam's available-period count in place, preserving heap
// ordering — used when propagating availability restrictions onto exams
// still waiting in the queue.
func (q *examQueue) Update(exam, available int) {
	item, ok := q.byID[exam]
	if !ok {
		return
	}
	item.available = available
	heap.Fix(q, item.index)
}

// Contains reports whether exam is still waiting in the queue.
func (q *examQueue) Contains(exam int) bool {
	_, ok := q.byID[exam]
	return ok
}

func (q *examQueue) Empty() bool { return len(q.items) == 0 }
