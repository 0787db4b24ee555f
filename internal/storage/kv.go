package storage

import (
	"context"
	"sync"
	"time"

	"github.com/shard-legends/squad-planner-service/pkg/metrics"
)

// KeyValueStore is the string store behind the snapshot repository.
// Get reports found=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Health(ctx context.Context) error
	Name() string
}

// MemoryStore keeps values in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryStore) Health(context.Context) error { return nil }

func (m *MemoryStore) Name() string { return "memory" }

// instrumented records storage metrics around every call.
type instrumented struct {
	next KeyValueStore
}

// Instrument wraps a store so each operation is counted and timed.
func Instrument(next KeyValueStore) KeyValueStore {
	return &instrumented{next: next}
}

func (i *instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	v, found, err := i.next.Get(ctx, key)
	i.record("get", start, err)
	return v, found, err
}

func (i *instrumented) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	i.record("set", start, err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := i.next.Delete(ctx, keys...)
	i.record("delete", start, err)
	return err
}

func (i *instrumented) Health(ctx context.Context) error {
	return i.next.Health(ctx)
}

func (i *instrumented) Name() string {
	return i.next.Name()
}

func (i *instrumented) record(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordStorageOperation(i.next.Name(), operation, status, time.Since(start).Seconds())
}
