package model

// PendingQueue holds orders that have been injected (their created_time has
// arrived) but not yet handed to a dispatch strategy, preserving injection
// order.
type PendingQueue struct {
	orders         []*Order
	batchStartTime *Minutes
}

// Append adds an order to the back of the queue, preserving injection
// order. If the queue was empty and has no open batch, callers are expected
// to call StartBatch separately; Append itself does not touch
// batch_start_time, since the simulator needs to set it only once per
// batch regardless of how many orders arrive within it.
func (q *PendingQueue) Append(order *Order) {
	q.orders = append(q.orders, order)
}

// StartBatch sets batch_start_time if it is not already set.
func (q *PendingQueue) StartBatch(at Minutes) {
	if q.batchStartTime == nil {
		q.batchStartTime = &at
	}
}

// BatchStartTime returns the current batch's start time, if one is open.
func (q *PendingQueue) BatchStartTime() (Minutes, bool) {
	if q.batchStartTime == nil {
		return 0, false
	}

	return *q.batchStartTime, true
}

// ClearBatch clears batch_start_time, called after any dispatch.
func (q *PendingQueue) ClearBatch() {
	q.batchStartTime = nil
}

// Orders returns the queue's current contents in injection order. The
// returned slice aliases internal storage and must not be mutated by the
// caller beyond the Remove method below.
func (q *PendingQueue) Orders() []*Order {
	return q.orders
}

// Len returns the number of orders currently pending.
func (q *PendingQueue) Len() int {
	return len(q.orders)
}

// Remove drops every order whose id is in assignedIDs, preserving the
// relative order of what remains.
func (q *PendingQueue) Remove(assignedIDs map[string]bool) {
	if len(assignedIDs) == 0 {
		return
	}

	remaining := q.orders[:0]

	for _, o := range q.orders {
		if !assignedIDs[o.ID] {
			remaining = append(remaining, o)
		}
	}

	q.orders = remaining
}
