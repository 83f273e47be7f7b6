package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
	basecache "github.com/riskibarqy/bolao-sca/internal/platform/cache"
	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
	"github.com/riskibarqy/bolao-sca/internal/platform/resilience"
)

// MemoryBoardCache keeps boards in the process-local store.
type MemoryBoardCache struct {
	store *basecache.Store
}

func NewMemoryBoardCache(store *basecache.Store) *MemoryBoardCache {
	return &MemoryBoardCache{store: store}
}

func (c *MemoryBoardCache) GetOrLoad(ctx context.Context, key string, load func(context.Context) (ranking.Board, error)) (ranking.Board, error) {
	v, err := c.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		board, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return cloneBoard(board), nil
	})
	if err != nil {
		return ranking.Board{}, err
	}

	board, _ := v.(ranking.Board)
	return cloneBoard(board), nil
}

func (c *MemoryBoardCache) Invalidate(ctx context.Context, prefix string) error {
	c.store.DeletePrefix(ctx, prefix)
	return nil
}

const redisScanCount = 200

// RedisBoardCache shares boards between API replicas. Redis failures never fail a
// read: the board is computed directly and the breaker keeps a sick Redis from
// adding latency to every request.
//
// Board keys embed a generation counter that Invalidate increments. A load that
// began before an invalidation writes under the old generation, which no reader
// looks up again.
type RedisBoardCache struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
	breaker   *resilience.CircuitBreaker
	flight    resilience.SingleFlight
	logger    *logging.Logger
}

func NewRedisBoardCache(
	client redis.UniversalClient,
	namespace string,
	ttl time.Duration,
	breakerCfg resilience.CircuitBreakerConfig,
	logger *logging.Logger,
) *RedisBoardCache {
	if logger == nil {
		logger = logging.Default()
	}

	return &RedisBoardCache{
		client:    client,
		namespace: strings.TrimSuffix(strings.TrimSpace(namespace), ":"),
		ttl:       ttl,
		breaker: resilience.NewCircuitBreaker("redis-ranking-cache", breakerCfg, func(name string, from, to resilience.CircuitState) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
		}),
		logger: logger,
	}
}

func (c *RedisBoardCache) GetOrLoad(ctx context.Context, key string, load func(context.Context) (ranking.Board, error)) (ranking.Board, error) {
	gen, ok := c.generation(ctx)
	if !ok {
		return load(ctx)
	}
	fullKey := c.boardKey(gen, key)

	if board, ok := c.get(ctx, fullKey); ok {
		return board, nil
	}

	v, err, _ := c.flight.Do(ctx, fullKey, func() (any, error) {
		board, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.set(ctx, fullKey, board)
		return board, nil
	})
	if err != nil {
		return ranking.Board{}, err
	}

	board, _ := v.(ranking.Board)
	return cloneBoard(board), nil
}

// Invalidate moves readers to a new generation and then deletes the boards under
// prefix. Failures are returned so the caller can log them; if the increment
// itself fails, stale boards live until their TTL.
func (c *RedisBoardCache) Invalidate(ctx context.Context, prefix string) error {
	err := c.breaker.Do(func() error {
		if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
			return fmt.Errorf("bump ranking generation: %w", err)
		}

		pattern := c.key("g*:" + prefix + "*")
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, pattern, redisScanCount).Result()
			if err != nil {
				return fmt.Errorf("scan ranking keys: %w", err)
			}
			if len(keys) > 0 {
				if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
					return fmt.Errorf("unlink ranking keys: %w", err)
				}
			}
			if next == 0 {
				return nil
			}
			cursor = next
		}
	})
	if err != nil {
		return fmt.Errorf("invalidate redis ranking cache: %w", err)
	}
	return nil
}

// generation reads the current board generation. ok is false when Redis cannot
// be asked, in which case nothing may be cached.
func (c *RedisBoardCache) generation(ctx context.Context) (int64, bool) {
	var gen int64
	err := c.breaker.Do(func() error {
		value, err := c.client.Get(ctx, c.generationKey()).Int64()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		gen = value
		return err
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "redis ranking generation read failed", "error", err)
		}
		return 0, false
	}
	return gen, true
}

func (c *RedisBoardCache) get(ctx context.Context, key string) (ranking.Board, bool) {
	var raw []byte
	err := c.breaker.Do(func() error {
		value, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = value
		return err
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "redis ranking cache read failed", "key", key, "error", err)
		}
		return ranking.Board{}, false
	}
	if raw == nil {
		return ranking.Board{}, false
	}

	var board ranking.Board
	if err := sonic.Unmarshal(raw, &board); err != nil {
		c.logger.WarnContext(ctx, "discarding undecodable cached ranking", "key", key, "error", err)
		return ranking.Board{}, false
	}
	return board, true
}

func (c *RedisBoardCache) set(ctx context.Context, key string, board ranking.Board) {
	raw, err := sonic.Marshal(board)
	if err != nil {
		c.logger.WarnContext(ctx, "encode ranking for cache failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Do(func() error {
		return c.client.Set(ctx, key, raw, c.ttl).Err()
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "redis ranking cache write failed", "key", key, "error", err)
	}
}

func (c *RedisBoardCache) generationKey() string {
	return c.key("generation")
}

func (c *RedisBoardCache) boardKey(gen int64, key string) string {
	return c.key("g" + strconv.FormatInt(gen, 10) + ":" + key)
}

func (c *RedisBoardCache) key(key string) string {
	if c.namespace == "" {
		return key
	}
	return c.namespace + ":" + key
}

func cloneBoard(board ranking.Board) ranking.Board {
	copied := board
	copied.Entries = append([]ranking.Entry(nil), board.Entries...)
	return copied
}
