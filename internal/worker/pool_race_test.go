package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPool_RaceCondition(t *testing.T) {
	flusher := &recordingFlusher{}
	pool := NewPool[int](PoolConfig{
		Name:          "test_race",
		WorkerCount:   4,
		QueueSize:     1000,
		BatchSize:     10,
		FlushInterval: 5 * time.Millisecond,
		Logger:        zap.NewNop(),
	}, flusher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if pool.Enqueue(g*100 + i) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}(g)
	}

	wg.Wait()
	pool.Stop()

	if got := len(flusher.all()); got != accepted {
		t.Errorf("flushed %d jobs, accepted %d", got, accepted)
	}
}
