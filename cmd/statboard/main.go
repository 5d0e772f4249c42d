package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openmohaa/statboard/internal/afk"
	"github.com/openmohaa/statboard/internal/config"
	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/display"
	"github.com/openmohaa/statboard/internal/handlers"
	"github.com/openmohaa/statboard/internal/leaderboard"
	"github.com/openmohaa/statboard/internal/moderation"
	"github.com/openmohaa/statboard/internal/ratio"
	"github.com/openmohaa/statboard/internal/registry"
	"github.com/openmohaa/statboard/internal/scheduler"
	"github.com/openmohaa/statboard/internal/scores"
	"github.com/openmohaa/statboard/internal/tracker"
	"github.com/openmohaa/statboard/internal/worker"
	"github.com/openmohaa/statboard/internal/world"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Sugar().Fatalw("Statboard stopped", "error", err)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis: score journal, and config blobs when Postgres is not configured
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	checks := map[string]handlers.Check{
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	var blobs configstore.BlobStore = configstore.NewRedisBlobs(rdb)
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		pg := configstore.NewPostgresBlobs(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		blobs = pg
		checks["postgres"] = pool.Ping
		sugar.Infow("Config blobs stored in Postgres")
	}

	conf := configstore.New(blobs, configstore.Options{
		QueueSize:     cfg.FlushQueueSize,
		BatchSize:     cfg.FlushBatchSize,
		FlushInterval: cfg.FlushInterval,
		Logger:        logger,
	})
	if err := conf.Warm(ctx, configstore.AllKeys...); err != nil {
		return err
	}
	// Pools outlive the signal context; Stop drains them on the way out.
	conf.Start(context.Background())
	defer conf.Stop()

	// Scoreboard: in-memory, journaled to Redis by a single ordered worker
	// and mirrored to the add-on through the outbox
	outbox := world.NewOutbox(world.DefaultMaxCommands)
	mem := scores.NewMemory()
	if err := scores.Hydrate(ctx, rdb, mem, sugar); err != nil {
		return err
	}
	journal := worker.NewPool[scores.Mutation](worker.PoolConfig{
		Name:          "score_journal",
		WorkerCount:   1,
		QueueSize:     cfg.FlushQueueSize,
		BatchSize:     cfg.FlushBatchSize,
		FlushInterval: cfg.FlushInterval,
		Logger:        logger,
	}, scores.NewRedisJournal(rdb))
	journal.Start(context.Background())
	defer journal.Stop()
	store := scores.NewStore(scores.NewJournaled(mem, scores.Tee{journal, outbox}))

	var (
		archive leaderboard.ArchiveSink
		history handlers.HistoryReader
	)
	if cfg.ClickHouseURL != "" {
		conn, err := openClickHouse(ctx, cfg.ClickHouseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		ch := leaderboard.NewClickHouseArchive(conn)
		if err := ch.EnsureSchema(ctx); err != nil {
			return err
		}
		archivePool := worker.NewPool[leaderboard.Row](worker.PoolConfig{
			Name:          "snapshot_archive",
			WorkerCount:   2,
			QueueSize:     cfg.FlushQueueSize,
			BatchSize:     cfg.FlushBatchSize,
			FlushInterval: cfg.FlushInterval,
			Logger:        logger,
		}, ch)
		archivePool.Start(context.Background())
		defer archivePool.Stop()
		archive = archivePool
		history = ch
		checks["clickhouse"] = conn.Ping
		sugar.Infow("Snapshot archive enabled")
	}

	roster := world.NewRoster()
	reg := registry.New(conf, logger)
	ratios := ratio.NewRepository(conf, store, logger)
	snapshotter := leaderboard.NewSnapshotter(conf, reg, store, archive, logger)

	sched := scheduler.New(scheduler.Engine{
		Roster:      roster,
		Outbox:      outbox,
		Tracker:     tracker.New(reg, store, logger),
		Ratios:      ratio.NewEngine(ratios, store, roster, outbox, logger),
		Rotator:     display.NewRotator(conf, store, roster, outbox, logger),
		HUD:         display.NewHUD(reg, store, roster, outbox),
		AFK:         afk.NewDetector(conf, outbox, outbox, logger),
		Moderation:  moderation.NewEnforcer(conf, outbox, outbox, logger),
		Snapshotter: snapshotter,
	}, scheduler.Config{
		TickInterval:     cfg.TickInterval,
		SnapshotInterval: cfg.SnapshotInterval,
		QueueSize:        cfg.IngestQueueSize,
		Logger:           logger,
	})

	h := handlers.New(handlers.Config{
		Events:      sched,
		Outbox:      outbox,
		Players:     roster,
		ConfigStore: conf,
		Registry:    reg,
		Ratios:      ratios,
		Leaderboard: snapshotter,
		History:     history,
		Scores:      store,
		Checks:      checks,
		ServerToken: cfg.ServerToken,
		AdminToken:  cfg.AdminToken,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Routes(cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	g.Go(func() error {
		sugar.Infow("Statboard listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sugar.Infow("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openClickHouse(ctx context.Context, dsn string) (driver.Conn, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse CLICKHOUSE_URL: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect clickhouse: %w", err)
	}
	return conn, nil
}
