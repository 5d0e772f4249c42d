package scores

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// objectivesKey maps objective name -> label
	objectivesKey = "statboard:objectives"
	// objectiveKeyPrefix + name maps identity -> value
	objectiveKeyPrefix = "statboard:objective:"
)

// RedisClient defines the subset of the Redis client used by the journal
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Pipeline() redis.Pipeliner
}

// RedisJournal persists scoreboard mutations to Redis. It is the flusher of
// the score write-behind pool, which must run a single worker so mutations
// are applied in order.
type RedisJournal struct {
	client RedisClient
}

func NewRedisJournal(client RedisClient) *RedisJournal {
	return &RedisJournal{client: client}
}

// Flush applies a batch of mutations in one pipeline.
func (r *RedisJournal) Flush(ctx context.Context, batch []Mutation) error {
	if len(batch) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, m := range batch {
		key := objectiveKeyPrefix + m.Objective
		switch m.Op {
		case OpEnsure:
			pipe.HSet(ctx, objectivesKey, m.Objective, m.Label)
		case OpRemove:
			pipe.HDel(ctx, objectivesKey, m.Objective)
			pipe.Del(ctx, key)
		case OpSet:
			pipe.HSet(ctx, key, m.Identity, m.Value)
		case OpSetMany:
			fields := make(map[string]interface{}, len(m.Values))
			for identity, v := range m.Values {
				fields[identity] = v
			}
			pipe.HSet(ctx, key, fields)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("score journal pipeline: %w", err)
	}
	return nil
}

// Hydrate loads every persisted objective into mem.
func Hydrate(ctx context.Context, client RedisClient, mem *Memory, logger *zap.SugaredLogger) error {
	labels, err := client.HGetAll(ctx, objectivesKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("load objectives: %w", err)
	}
	if len(labels) == 0 {
		return nil
	}

	pipe := client.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(labels))
	for name := range labels {
		cmds[name] = pipe.HGetAll(ctx, objectiveKeyPrefix+name)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("load objective scores: %w", err)
	}

	participants := 0
	for name, label := range labels {
		mem.EnsureObjective(name, label)

		raw, err := cmds[name].Result()
		if err != nil {
			continue
		}
		values := make(map[string]int64, len(raw))
		for identity, s := range raw {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				logger.Warnw("Skipping malformed persisted score", "objective", name, "identity", identity, "value", s)
				continue
			}
			values[identity] = v
		}
		mem.SetScores(name, values)
		participants += len(values)
	}

	logger.Infow("Scoreboard hydrated", "objectives", len(labels), "scores", participants)
	return nil
}
