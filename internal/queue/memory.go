package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"main/internal/model/enum"
)

// Memory mirrors Manager's lane semantics in process, for tests and
// paper trading. Dequeue never blocks; the timeout is ignored.
type Memory struct {
	mu       sync.Mutex
	normal   []Task
	priority []scoredTask
	seq      int64
	status   map[string]memoryStatus
	ttl      time.Duration
}

type scoredTask struct {
	score float64
	seq   int64
	task  Task
}

type memoryStatus struct {
	entry     Status
	expiresAt time.Time
}

func NewMemory(statusTTL time.Duration) *Memory {
	if statusTTL <= 0 {
		statusTTL = defaultStatusTTL
	}
	return &Memory{
		status: make(map[string]memoryStatus),
		ttl:    statusTTL,
	}
}

func (m *Memory) Enqueue(_ context.Context, task Task) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ProcessingID == "" {
		task.ProcessingID = uuid.NewString()
	}
	task.Version = TaskVersion
	task.QueuedAt = time.Now().UTC()

	if task.Priority > 0 {
		m.seq++
		m.priority = append(m.priority, scoredTask{
			score: float64(task.Priority) + float64(task.QueuedAt.Unix()),
			seq:   m.seq,
			task:  task,
		})
		sort.SliceStable(m.priority, func(i, j int) bool {
			if m.priority[i].score != m.priority[j].score {
				return m.priority[i].score < m.priority[j].score
			}
			return m.priority[i].seq < m.priority[j].seq
		})
	} else {
		m.normal = append(m.normal, task)
	}
	return task.ProcessingID, nil
}

func (m *Memory) Dequeue(_ context.Context, _ time.Duration) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.priority) != 0 {
		task := m.priority[0].task
		m.priority = m.priority[1:]
		if err := task.Validate(); err != nil {
			return nil, err
		}
		return &task, nil
	}

	if len(m.normal) != 0 {
		task := m.normal[0]
		m.normal = m.normal[1:]
		if err := task.Validate(); err != nil {
			return nil, err
		}
		return &task, nil
	}

	return nil, nil
}

func (m *Memory) SetStatus(_ context.Context, processingID string, status enum.Status, result map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status[processingID] = memoryStatus{
		entry: Status{
			ProcessingID: processingID,
			Status:       status,
			Result:       result,
			UpdatedAt:    time.Now().UTC(),
		},
		expiresAt: time.Now().Add(m.ttl),
	}
	return nil
}

func (m *Memory) GetStatus(_ context.Context, processingID string) (*Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.status[processingID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(m.status, processingID)
		return nil, nil
	}
	found := entry.entry
	return &found, nil
}

func (m *Memory) QueueDepth(_ context.Context) (Depth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Depth{
		Normal:   int64(len(m.normal)),
		Priority: int64(len(m.priority)),
	}, nil
}

func (m *Memory) Health(ctx context.Context) Health {
	depth, _ := m.QueueDepth(ctx)
	return Health{Connected: true, Depth: depth}
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.normal = nil
	m.priority = nil
	return nil
}
