package configstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockBackend implements BlobStore in memory
type MockBackend struct {
	mu      sync.Mutex
	Data    map[string]string
	Batches [][]Blob
	ReadErr error
}

func NewMockBackend() *MockBackend {
	return &MockBackend{Data: make(map[string]string)}
}

func (m *MockBackend) ReadBlobs(ctx context.Context, keys []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := m.Data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MockBackend) WriteBlobs(ctx context.Context, blobs []Blob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches = append(m.Batches, blobs)
	for _, b := range blobs {
		m.Data[b.Key] = b.Value
	}
	return nil
}

func (m *MockBackend) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Data[key]
	return v, ok
}

// MockPgPool captures statements and serves canned rows
type MockPgPool struct {
	ExecSQL   string
	ExecArgs  []any
	QuerySQL  string
	QueryArgs []any
	Rows      [][2]string
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	m.QuerySQL = sql
	m.QueryArgs = args
	return &MockPGXRows{rows: m.Rows, idx: -1}, nil
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.ExecSQL = sql
	m.ExecArgs = args
	return pgconn.CommandTag{}, nil
}

// MockPGXRows iterates key/value pairs
type MockPGXRows struct {
	rows [][2]string
	idx  int
}

func (m *MockPGXRows) Close() {}
func (m *MockPGXRows) Err() error { return nil }
func (m *MockPGXRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (m *MockPGXRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *MockPGXRows) Values() ([]any, error) { return nil, nil }
func (m *MockPGXRows) RawValues() [][]byte { return nil }
func (m *MockPGXRows) Conn() *pgx.Conn { return nil }

func (m *MockPGXRows) Next() bool {
	m.idx++
	return m.idx < len(m.rows)
}

func (m *MockPGXRows) Scan(dest ...any) error {
	if len(dest) != 2 {
		return fmt.Errorf("want 2 dest, got %d", len(dest))
	}
	*dest[0].(*string) = m.rows[m.idx][0]
	*dest[1].(*string) = m.rows[m.idx][1]
	return nil
}
