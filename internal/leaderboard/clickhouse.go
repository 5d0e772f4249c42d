package leaderboard

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createSnapshotTable = `
CREATE TABLE IF NOT EXISTS statboard.leaderboard_snapshots (
	snapshot_id UUID,
	taken_at DateTime64(3),
	counter LowCardinality(String),
	player String,
	value Int64
) ENGINE = MergeTree()
ORDER BY (counter, taken_at, player)`

// ClickHouseArchive appends snapshot rows to ClickHouse. It is the flusher
// behind the archive worker pool.
type ClickHouseArchive struct {
	conn driver.Conn
}

func NewClickHouseArchive(conn driver.Conn) *ClickHouseArchive {
	return &ClickHouseArchive{conn: conn}
}

// EnsureSchema creates the snapshot table.
func (a *ClickHouseArchive) EnsureSchema(ctx context.Context) error {
	if err := a.conn.Exec(ctx, "CREATE DATABASE IF NOT EXISTS statboard"); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	if err := a.conn.Exec(ctx, createSnapshotTable); err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}
	return nil
}

// Flush sends batch as one insert.
func (a *ClickHouseArchive) Flush(ctx context.Context, batch []Row) error {
	if len(batch) == 0 {
		return nil
	}
	chBatch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO statboard.leaderboard_snapshots (
			snapshot_id, taken_at, counter, player, value
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare snapshot batch: %w", err)
	}

	for _, row := range batch {
		if err := chBatch.Append(row.SnapshotID, row.TakenAt, row.Counter, row.Player, row.Value); err != nil {
			_ = chBatch.Abort()
			return fmt.Errorf("append snapshot row: %w", err)
		}
	}
	if err := chBatch.Send(); err != nil {
		return fmt.Errorf("send snapshot batch: %w", err)
	}
	return nil
}
