// Package redisstore implements ideas.Store on Redis.
//
// Keys, relative to the configured prefix:
//
//	ideas:keys   hash  folded text key -> idea id
//	ideas:data   hash  idea id -> JSON record
//	ideas:order  zset  idea id scored by insertion sequence
//	ideas:seq    counter backing the insertion sequence
//
// Inserts run as a Lua script, so the key check and the record writes are
// one atomic server-side step.
package redisstore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/emalfdraw/internal/ideas"
)

var insertScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
local seq = redis.call('INCR', KEYS[4])
redis.call('ZADD', KEYS[3], seq, ARGV[2])
return 1
`)

// Store is a Redis-backed ideas.Store.
type Store struct {
	client *redis.Client
	keys   []string
	data   string
	order  string
	logger *slog.Logger
}

// New creates a Store whose keys all start with prefix.
func New(client *redis.Client, prefix string, logger *slog.Logger) *Store {
	keys := prefix + "ideas:keys"
	data := prefix + "ideas:data"
	order := prefix + "ideas:order"
	seq := prefix + "ideas:seq"

	return &Store{
		client: client,
		keys:   []string{keys, data, order, seq},
		data:   data,
		order:  order,
		logger: logger.With("system", "redisstore"),
	}
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, s.data).Result()
	if err != nil {
		return 0, mapError(fmt.Errorf("count ideas: %w", err))
	}
	return int(n), nil
}

func (s *Store) Insert(ctx context.Context, idea ideas.Idea) (ideas.Idea, error) {
	ok, err := s.insert(ctx, idea)
	if err != nil {
		return ideas.Idea{}, err
	}
	if !ok {
		return ideas.Idea{}, ideas.ErrConflict
	}
	return idea, nil
}

func (s *Store) InsertMany(ctx context.Context, batch []ideas.Idea) (int, error) {
	inserted := 0
	for _, idea := range batch {
		ok, err := s.insert(ctx, idea)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}

	if skipped := len(batch) - inserted; skipped > 0 {
		s.logger.Info("skipped ideas already stored", "count", skipped)
	}
	return inserted, nil
}

func (s *Store) ListByRecency(ctx context.Context) ([]ideas.Idea, error) {
	order, err := s.client.ZRangeWithScores(ctx, s.order, 0, -1).Result()
	if err != nil {
		return nil, mapError(fmt.Errorf("list order: %w", err))
	}

	records, err := s.client.HGetAll(ctx, s.data).Result()
	if err != nil {
		return nil, mapError(fmt.Errorf("list ideas: %w", err))
	}

	type entry struct {
		idea ideas.Idea
		seq  float64
	}

	entries := make([]entry, 0, len(order))
	for _, z := range order {
		id, _ := z.Member.(string)
		raw, ok := records[id]
		if !ok {
			continue
		}
		idea, err := decode(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{idea: idea, seq: z.Score})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		if c := b.idea.CreatedAt.Compare(a.idea.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	list := make([]ideas.Idea, len(entries))
	for i, e := range entries {
		list[i] = e.idea
	}
	return list, nil
}

func (s *Store) SampleOne(ctx context.Context) (ideas.Idea, error) {
	ids, err := s.client.HRandField(ctx, s.data, 1).Result()
	if err != nil {
		return ideas.Idea{}, mapError(fmt.Errorf("sample idea: %w", err))
	}
	if len(ids) == 0 {
		return ideas.Idea{}, ideas.ErrEmpty
	}

	raw, err := s.client.HGet(ctx, s.data, ids[0]).Result()
	if err != nil {
		return ideas.Idea{}, mapError(fmt.Errorf("load idea: %w", err))
	}
	return decode(raw)
}

func (s *Store) insert(ctx context.Context, idea ideas.Idea) (bool, error) {
	payload, err := json.Marshal(idea)
	if err != nil {
		return false, fmt.Errorf("encode idea: %w", err)
	}

	n, err := insertScript.Run(
		ctx, s.client, s.keys,
		ideas.Key(idea.Text), idea.ID.String(), payload,
	).Int()
	if err != nil {
		return false, mapError(fmt.Errorf("insert idea: %w", err))
	}
	return n == 1, nil
}

func decode(raw string) (ideas.Idea, error) {
	var idea ideas.Idea
	if err := json.Unmarshal([]byte(raw), &idea); err != nil {
		return ideas.Idea{}, fmt.Errorf("decode idea: %w", err)
	}
	idea.CreatedAt = idea.CreatedAt.UTC()
	return idea, nil
}

func mapError(err error) error {
	if errors.Is(err, redis.Nil) {
		return ideas.ErrEmpty
	}
	if errors.Is(err, redis.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		ideas.IsUnavailable(err) {
		return fmt.Errorf("%w: %w", ideas.ErrUnavailable, err)
	}
	return err
}
