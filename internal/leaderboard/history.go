package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

var ErrInvalidHistoryQuery = errors.New("invalid history query")

// HistoryQuery selects archived snapshot values of one counter.
type HistoryQuery struct {
	Counter string
	Player  string // empty selects every player
	Since   time.Time
	Until   time.Time
	Limit   int
}

// HistoryPoint is one archived value.
type HistoryPoint struct {
	TakenAt time.Time `json:"takenAt"`
	Player  string    `json:"player"`
	Value   int64     `json:"value"`
}

// BuildHistoryQuery builds a parameterized ClickHouse query for q. Newest
// snapshots come first.
func BuildHistoryQuery(q HistoryQuery) (string, []interface{}, error) {
	counter := strings.TrimSpace(q.Counter)
	if counter == "" {
		return "", nil, fmt.Errorf("%w: missing counter", ErrInvalidHistoryQuery)
	}
	if !q.Since.IsZero() && !q.Until.IsZero() && q.Until.Before(q.Since) {
		return "", nil, fmt.Errorf("%w: until before since", ErrInvalidHistoryQuery)
	}

	query := "SELECT taken_at, player, value FROM statboard.leaderboard_snapshots WHERE counter = ?"
	args := []interface{}{OfflineCounter(counter)}

	if q.Player != "" {
		query += " AND player = ?"
		args = append(args, q.Player)
	}
	if !q.Since.IsZero() {
		query += " AND taken_at >= ?"
		args = append(args, q.Since)
	}
	if !q.Until.IsZero() {
		query += " AND taken_at <= ?"
		args = append(args, q.Until)
	}

	query += " ORDER BY taken_at DESC, value DESC, player ASC"

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	return query, args, nil
}

// History reads archived snapshot values matching q.
func (a *ClickHouseArchive) History(ctx context.Context, q HistoryQuery) ([]HistoryPoint, error) {
	query, args, err := BuildHistoryQuery(q)
	if err != nil {
		return nil, err
	}
	rows, err := a.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshot history: %w", err)
	}
	defer rows.Close()

	points := []HistoryPoint{}
	for rows.Next() {
		var p HistoryPoint
		if err := rows.Scan(&p.TakenAt, &p.Player, &p.Value); err != nil {
			return nil, fmt.Errorf("scan snapshot history: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
