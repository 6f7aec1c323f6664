package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model/enum"
)

func TestPriorityLaneDrainsFirst(t *testing.T) {
	m := NewMemory(time.Hour)
	ctx := context.Background()

	a := validTask()
	a.TransactionID = "A"
	b := validTask()
	b.TransactionID = "B"
	b.Priority = 1
	c := validTask()
	c.TransactionID = "C"

	for _, task := range []Task{a, b, c} {
		_, err := m.Enqueue(ctx, task)
		require.NoError(t, err)
	}

	var order []string
	for {
		task, err := m.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		if task == nil {
			break
		}
		order = append(order, task.TransactionID)
	}

	assert.Equal(t, []string{"B", "A", "C"}, order)
}

func TestQueueDepthAccounting(t *testing.T) {
	m := NewMemory(time.Hour)
	ctx := context.Background()

	const normal, priority = 3, 2
	for i := 0; i < normal; i++ {
		_, err := m.Enqueue(ctx, validTask())
		require.NoError(t, err)
	}
	for i := 0; i < priority; i++ {
		task := validTask()
		task.Priority = 1
		_, err := m.Enqueue(ctx, task)
		require.NoError(t, err)
	}

	depth, err := m.QueueDepth(ctx)
	require.NoError(t, err)
	assert.Equal(t, Depth{Normal: normal, Priority: priority}, depth)

	for i := 0; i < normal+priority; i++ {
		task, err := m.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, task)
	}

	depth, err = m.QueueDepth(ctx)
	require.NoError(t, err)
	assert.Equal(t, Depth{Normal: 0, Priority: 0}, depth)
}

func TestEnqueueAssignsProcessingID(t *testing.T) {
	m := NewMemory(time.Hour)

	task := validTask()
	task.ProcessingID = ""
	id, err := m.Enqueue(context.Background(), task)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestHealthSnapshot(t *testing.T) {
	m := NewMemory(time.Hour)
	ctx := context.Background()

	health := m.Health(ctx)
	assert.True(t, health.Connected)
	assert.Equal(t, Depth{}, health.Depth)
	assert.Empty(t, health.Error)

	_, err := m.Enqueue(ctx, validTask())
	require.NoError(t, err)
	urgent := validTask()
	urgent.Priority = 1
	_, err = m.Enqueue(ctx, urgent)
	require.NoError(t, err)

	health = m.Health(ctx)
	assert.True(t, health.Connected)
	assert.Equal(t, Depth{Normal: 1, Priority: 1}, health.Depth)
}

func TestStatusExpiry(t *testing.T) {
	m := NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, m.SetStatus(ctx, "p-1", enum.StatusCompleted, map[string]any{"ok": true}))

	entry, err := m.GetStatus(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, enum.StatusCompleted, entry.Status)

	time.Sleep(20 * time.Millisecond)

	entry, err = m.GetStatus(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, entry, "expired status must read as missing, not failed")
}

func TestStatusLastWriterWins(t *testing.T) {
	m := NewMemory(time.Hour)
	ctx := context.Background()

	require.NoError(t, m.SetStatus(ctx, "p-1", enum.StatusProcessing, nil))
	require.NoError(t, m.SetStatus(ctx, "p-1", enum.StatusFailed, map[string]any{"error": "boom"}))

	entry, err := m.GetStatus(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, enum.StatusFailed, entry.Status)
	assert.Equal(t, "boom", entry.Result["error"])
}
