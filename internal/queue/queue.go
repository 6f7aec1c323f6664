package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/yanun0323/logs"

	"main/internal/errors"
	"main/internal/model/enum"
	"main/pkg/exception"
)

const (
	defaultStatusTTL = time.Hour

	prioritySuffix  = "_priority"
	statusKeyPrefix = "task_status:"
)

// Depth reports the number of waiting tasks per lane.
type Depth struct {
	Normal   int64 `json:"normal"`
	Priority int64 `json:"priority"`
}

// Health is the operational snapshot exposed for monitoring.
type Health struct {
	Connected bool   `json:"connected"`
	Depth     Depth  `json:"depth"`
	Error     string `json:"error,omitempty"`
}

// Status is the ephemeral execution status kept independently of the
// durable transaction row. It expires after the manager's TTL.
type Status struct {
	ProcessingID string         `json:"processing_id"`
	Status       enum.Status    `json:"status"`
	Result       map[string]any `json:"result,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Manager is a durable dual-lane work queue on Redis.
//
// Normal-lane tasks are FIFO (LPUSH/BRPOP); priority tasks live in a
// sorted set scored by priority plus arrival time and are always drained
// before the normal lane is polled.
type Manager struct {
	rdb       *redis.Client
	queueName string
	statusTTL time.Duration
}

// NewManager creates a queue manager over an established Redis client.
func NewManager(rdb *redis.Client, queueName string, statusTTL time.Duration) *Manager {
	if statusTTL <= 0 {
		statusTTL = defaultStatusTTL
	}
	return &Manager{
		rdb:       rdb,
		queueName: queueName,
		statusTTL: statusTTL,
	}
}

// Enqueue stamps and routes a task to its lane, returning the processing ID.
// The task is durably visible to consumers as soon as this returns.
func (m *Manager) Enqueue(ctx context.Context, task Task) (string, error) {
	if task.ProcessingID == "" {
		task.ProcessingID = uuid.NewString()
	}
	task.Version = TaskVersion
	task.QueuedAt = time.Now().UTC()

	payload, err := encodeTask(task)
	if err != nil {
		return "", errors.Wrap(err, "encode task")
	}

	if task.Priority > 0 {
		score := float64(task.Priority) + float64(task.QueuedAt.Unix())
		if err := m.rdb.ZAdd(ctx, m.priorityQueue(), redis.Z{
			Score:  score,
			Member: payload,
		}).Err(); err != nil {
			return "", errors.Wrap(err, "enqueue priority task")
		}
	} else {
		if err := m.rdb.LPush(ctx, m.queueName, payload).Err(); err != nil {
			return "", errors.Wrap(err, "enqueue task")
		}
	}

	logs.Infof("task %s enqueued to %s, priority %d", task.ProcessingID, m.queueName, task.Priority)
	return task.ProcessingID, nil
}

// Dequeue pops the next task, draining the priority lane before blocking
// up to timeout on the normal lane. Returns (nil, nil) when idle.
func (m *Manager) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	popped, err := m.rdb.ZPopMin(ctx, m.priorityQueue(), 1).Result()
	if err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, "pop priority lane")
	}
	if len(popped) != 0 {
		raw, ok := popped[0].Member.(string)
		if !ok {
			return nil, exception.ErrTaskMalformed
		}
		task, err := decodeTask([]byte(raw))
		if err != nil {
			return nil, err
		}
		return &task, nil
	}

	result, err := m.rdb.BRPop(ctx, timeout, m.queueName).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "pop normal lane")
	}
	if len(result) != 2 {
		return nil, nil
	}

	task, err := decodeTask([]byte(result[1]))
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// SetStatus overwrites the task status entry with a fresh TTL.
// Last writer wins; no history is kept.
func (m *Manager) SetStatus(ctx context.Context, processingID string, status enum.Status, result map[string]any) error {
	entry := Status{
		ProcessingID: processingID,
		Status:       status,
		Result:       result,
		UpdatedAt:    time.Now().UTC(),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode task status")
	}

	if err := m.rdb.SetEx(ctx, statusKey(processingID), payload, m.statusTTL).Err(); err != nil {
		return errors.Wrapf(err, "set task %s status", processingID)
	}
	return nil
}

// GetStatus returns the live task status, or (nil, nil) once the TTL has
// elapsed. A missing status is not a terminal failure; callers fall back
// to the durable transaction row.
func (m *Manager) GetStatus(ctx context.Context, processingID string) (*Status, error) {
	raw, err := m.rdb.Get(ctx, statusKey(processingID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get task %s status", processingID)
	}

	var entry Status
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, errors.Wrap(err, "decode task status")
	}
	return &entry, nil
}

// QueueDepth counts waiting tasks per lane. Eventually consistent with
// respect to concurrent Enqueue/Dequeue.
func (m *Manager) QueueDepth(ctx context.Context) (Depth, error) {
	normal, err := m.rdb.LLen(ctx, m.queueName).Result()
	if err != nil {
		return Depth{}, errors.Wrap(err, "normal lane depth")
	}
	priority, err := m.rdb.ZCard(ctx, m.priorityQueue()).Result()
	if err != nil {
		return Depth{}, errors.Wrap(err, "priority lane depth")
	}
	return Depth{Normal: normal, Priority: priority}, nil
}

// Health pings the backend and snapshots lane depths.
func (m *Manager) Health(ctx context.Context) Health {
	if err := m.rdb.Ping(ctx).Err(); err != nil {
		return Health{Connected: false, Error: err.Error()}
	}

	depth, err := m.QueueDepth(ctx)
	if err != nil {
		return Health{Connected: true, Error: err.Error()}
	}
	return Health{Connected: true, Depth: depth}
}

// Clear drops all waiting tasks from both lanes.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.rdb.Del(ctx, m.queueName, m.priorityQueue()).Err(); err != nil {
		return errors.Wrapf(err, "clear queue %s", m.queueName)
	}
	logs.Infof("cleared queue %s", m.queueName)
	return nil
}

func (m *Manager) priorityQueue() string {
	return m.queueName + prioritySuffix
}

func statusKey(processingID string) string {
	return statusKeyPrefix + processingID
}
