package configstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createConfigTable = `
	CREATE TABLE IF NOT EXISTS statboard_config (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PostgresBlobs stores blobs in the statboard_config table.
type PostgresBlobs struct {
	db PgPool
}

func NewPostgresBlobs(db PgPool) *PostgresBlobs {
	return &PostgresBlobs{db: db}
}

// EnsureSchema creates the config table if missing.
func (p *PostgresBlobs) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createConfigTable); err != nil {
		return fmt.Errorf("create statboard_config: %w", err)
	}
	return nil
}

func (p *PostgresBlobs) ReadBlobs(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	rows, err := p.db.Query(ctx, `SELECT key, value FROM statboard_config WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("query config blobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan config blob: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// WriteBlobs upserts the batch in one statement. Only the last write of a key
// within the batch is kept.
func (p *PostgresBlobs) WriteBlobs(ctx context.Context, blobs []Blob) error {
	latest := make(map[string]int, len(blobs))
	var order []string
	for i, b := range blobs {
		if _, seen := latest[b.Key]; !seen {
			order = append(order, b.Key)
		}
		latest[b.Key] = i
	}
	if len(order) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO statboard_config (key, value, updated_at) VALUES ")
	vals := make([]any, 0, len(order)*3)
	now := time.Now()

	for i, key := range order {
		n := i * 3
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
		vals = append(vals, key, blobs[latest[key]].Value, now)
	}
	sb.WriteString(" ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at")

	if _, err := p.db.Exec(ctx, sb.String(), vals...); err != nil {
		return fmt.Errorf("upsert config blobs: %w", err)
	}
	return nil
}
