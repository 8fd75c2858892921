package redisstore_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/emalfdraw/internal/ideas"
	"github.com/JaimeStill/emalfdraw/internal/ideas/redisstore"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// openStore returns a store on EMALFDRAW_TEST_REDIS_ADDR when set, and on an
// in-process miniredis server otherwise.
func openStore(t *testing.T) *redisstore.Store {
	t.Helper()

	addr := os.Getenv("EMALFDRAW_TEST_REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	prefix := fmt.Sprintf("emalfdraw-test:%s:", uuid.NewString())
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})

	return redisstore.New(client, prefix, logger)
}

func newIdea(text string, at time.Time) ideas.Idea {
	return ideas.Idea{
		ID:        uuid.New(),
		Text:      text,
		CreatedAt: at.UTC().Truncate(time.Microsecond),
	}
}

func TestEmpty(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := store.ListByRecency(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.SampleOne(ctx)
	assert.ErrorIs(t, err, ideas.ErrEmpty)
}

func TestInsertConflict(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	idea := newIdea("Draw a tram", time.Now())
	stored, err := store.Insert(ctx, idea)
	require.NoError(t, err)
	assert.Equal(t, idea.ID, stored.ID)

	_, err = store.Insert(ctx, newIdea("draw a TRAM ", time.Now()))
	assert.ErrorIs(t, err, ideas.ErrConflict)

	sampled, err := store.SampleOne(ctx)
	require.NoError(t, err)
	assert.Equal(t, idea.ID, sampled.ID)
	assert.True(t, idea.CreatedAt.Equal(sampled.CreatedAt))
}

func TestConcurrentInsertSameKey(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := range 8 {
		wg.Go(func() {
			_, err := store.Insert(ctx, newIdea(fmt.Sprintf("Draw a Comet%s", []string{"", " "}[i%2]), time.Now()))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsertManyAndOrder(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	n, err := store.InsertMany(ctx, []ideas.Idea{
		newIdea("oldest", base),
		newIdea("tie first", base.Add(time.Minute)),
		newIdea("tie second", base.Add(time.Minute)),
		newIdea("TIE SECOND", base.Add(time.Minute)),
		newIdea("newest", base.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	list, err := store.ListByRecency(ctx)
	require.NoError(t, err)

	got := make([]string, len(list))
	for i, idea := range list {
		got[i] = idea.Text
	}
	assert.Equal(t, []string{"newest", "tie second", "tie first", "oldest"}, got)
}

func TestUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := redisstore.New(client, "emalfdraw-test:", logger)

	_, err := store.Count(context.Background())
	assert.ErrorIs(t, err, ideas.ErrUnavailable)
}

func TestSampleCoversEveryIdea(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	texts := []string{"Draw a fox", "Draw an owl", "Draw a hare"}
	for _, text := range texts {
		_, err := store.Insert(ctx, newIdea(text, time.Now()))
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	for range 200 {
		idea, err := store.SampleOne(ctx)
		require.NoError(t, err)
		seen[idea.Text] = true
	}
	for _, text := range texts {
		assert.True(t, seen[text], "%q never sampled", text)
	}
}

func TestServerGoneIsUnavailable(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	defer client.Close()

	store := redisstore.New(client, "emalfdraw-test:", logger)
	_, err := store.Insert(context.Background(), newIdea("Draw a fox", time.Now()))
	require.NoError(t, err)

	srv.Close()

	_, err = store.Count(context.Background())
	assert.ErrorIs(t, err, ideas.ErrUnavailable)
}
