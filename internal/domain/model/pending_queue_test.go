package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingQueue_BatchLifecycle(t *testing.T) {
	var q PendingQueue

	_, ok := q.BatchStartTime()
	assert.False(t, ok)

	o1 := NewOrder("o1", MustNewLocation(0, 0), MustNewLocation(0, 0), 10, 30)
	q.StartBatch(10)
	q.Append(&o1)

	start, ok := q.BatchStartTime()
	require.True(t, ok)
	assert.Equal(t, Minutes(10), start)

	// A second StartBatch within the same window must not move the clock.
	q.StartBatch(11)
	start, ok = q.BatchStartTime()
	require.True(t, ok)
	assert.Equal(t, Minutes(10), start)

	q.ClearBatch()
	_, ok = q.BatchStartTime()
	assert.False(t, ok)
}

func TestPendingQueue_RemovePreservesOrder(t *testing.T) {
	var q PendingQueue

	o1 := NewOrder("o1", MustNewLocation(0, 0), MustNewLocation(0, 0), 0, 30)
	o2 := NewOrder("o2", MustNewLocation(0, 0), MustNewLocation(0, 0), 0, 30)
	o3 := NewOrder("o3", MustNewLocation(0, 0), MustNewLocation(0, 0), 0, 30)

	q.Append(&o1)
	q.Append(&o2)
	q.Append(&o3)
	assert.Equal(t, 3, q.Len())

	q.Remove(map[string]bool{"o2": true})

	require.Equal(t, 2, q.Len())
	assert.Equal(t, "o1", q.Orders()[0].ID)
	assert.Equal(t, "o3", q.Orders()[1].ID)
}

func TestOrderSetSignature_OrderIndependent(t *testing.T) {
	a := OrderSetSignature([]string{"o1", "o2"})
	b := OrderSetSignature([]string{"o2", "o1"})
	assert.Equal(t, a, b)

	c := OrderSetSignature([]string{"o1", "o3"})
	assert.NotEqual(t, a, c)
}

func TestBundle_IDSignatureAndSize(t *testing.T) {
	o1 := NewOrder("o1", MustNewLocation(0, 0), MustNewLocation(0, 0), 0, 30)
	o2 := NewOrder("o2", MustNewLocation(0, 0), MustNewLocation(0, 0), 0, 30)

	b := Bundle{Orders: []*Order{&o1, &o2}}
	assert.Equal(t, 2, b.Size())
	assert.Equal(t, OrderSetSignature([]string{"o1", "o2"}), b.IDSignature())
}
