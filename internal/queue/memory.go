package queue

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is a channel-backed queue for tests and single-process development.
type Memory struct {
	mu     sync.Mutex
	queues map[string]chan []byte
}

func NewMemory() *Memory {
	return &Memory{queues: make(map[string]chan []byte)}
}

func (m *Memory) channel(queue string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.queues[queue]
	if !ok {
		ch = make(chan []byte, 128)
		m.queues[queue] = ch
	}
	return ch
}

func (m *Memory) Enqueue(ctx context.Context, queue string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	select {
	case m.channel(queue) <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Dequeue(ctx context.Context, queue string) ([]byte, error) {
	select {
	case data := <-m.channel(queue):
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports the number of buffered jobs on a queue.
func (m *Memory) Len(queue string) int {
	return len(m.channel(queue))
}
