package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/openmohaa/statboard/internal/leaderboard"
)

func main() {
	dsn := flag.String("dsn", "clickhouse://default:@localhost:9000/statboard", "ClickHouse DSN")
	counter := flag.String("counter", "kills", "counter to read")
	player := flag.String("player", "", "only this player")
	since := flag.Duration("since", 24*time.Hour, "how far back to read")
	limit := flag.Int("limit", 50, "rows")
	flag.Parse()

	ctx := context.Background()
	opts, err := clickhouse.ParseDSN(*dsn)
	if err != nil {
		log.Fatal(err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	points, err := leaderboard.NewClickHouseArchive(conn).History(ctx, leaderboard.HistoryQuery{
		Counter: *counter,
		Player:  *player,
		Since:   time.Now().Add(-*since),
		Limit:   *limit,
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, p := range points {
		fmt.Printf("%s  %-20s %d\n", p.TakenAt.Format(time.RFC3339), p.Player, p.Value)
	}
	fmt.Printf("%d rows\n", len(points))
}
