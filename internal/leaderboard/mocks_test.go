package leaderboard

import (
	"context"
	"errors"
	"reflect"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type MockSink struct {
	Rows []Row
	Full bool
}

func (m *MockSink) Enqueue(r Row) bool {
	if m.Full {
		return false
	}
	m.Rows = append(m.Rows, r)
	return true
}

// MockClickHouseConn implements driver.Conn for testing
type MockClickHouseConn struct {
	driver.Conn
	Execs   []string
	Queries []string
	Batch   *MockBatch
	Rows    [][]interface{}
	Args    []interface{}
}

func (m *MockClickHouseConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	m.Execs = append(m.Execs, query)
	return nil
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.Queries = append(m.Queries, query)
	if m.Batch == nil {
		m.Batch = &MockBatch{}
	}
	return m.Batch, nil
}

type MockBatch struct {
	driver.Batch
	Appended  [][]interface{}
	Sent      bool
	Aborted   bool
	AppendErr bool
}

func (m *MockBatch) Append(v ...interface{}) error {
	if m.AppendErr {
		return errors.New("append failed")
	}
	m.Appended = append(m.Appended, v)
	return nil
}

func (m *MockBatch) Send() error {
	m.Sent = true
	return nil
}

func (m *MockBatch) Abort() error {
	m.Aborted = true
	return nil
}

func (m *MockClickHouseConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	m.Queries = append(m.Queries, query)
	m.Args = args
	return &MockRows{rows: m.Rows}, nil
}

type MockRows struct {
	driver.Rows
	rows [][]interface{}
	idx  int
}

func (m *MockRows) Next() bool {
	m.idx++
	return m.idx <= len(m.rows)
}

func (m *MockRows) Scan(dest ...interface{}) error {
	for i, v := range m.rows[m.idx-1] {
		assign(dest[i], v)
	}
	return nil
}

func (m *MockRows) Close() error { return nil }
func (m *MockRows) Err() error   { return nil }

func assign(dest interface{}, val interface{}) {
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(val))
}
