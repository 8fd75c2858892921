// Package storage provides Redis key-value connections with lifecycle coordination.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/emalfdraw/pkg/lifecycle"
)

// System manages a Redis client and lifecycle coordination.
type System interface {
	// Client returns the underlying Redis client.
	Client() *redis.Client
	// Prefix returns the key prefix applied to every key this service owns.
	Prefix() string
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Close releases the client without lifecycle coordination.
	Close() error
}

type kv struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// New creates a storage system from the given configuration.
// The client connects lazily; Start verifies the connection.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts := &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeoutDuration(),
		PoolSize:    cfg.PoolSize,
	}

	return &kv{
		client: redis.NewClient(opts),
		prefix: cfg.Prefix,
		logger: logger.With("system", "storage"),
	}, nil
}

func (s *kv) Client() *redis.Client {
	return s.client
}

func (s *kv) Prefix() string {
	return s.prefix
}

func (s *kv) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting storage connection", "addr", s.client.Options().Addr)

	lc.OnStartup(func() {
		if err := s.Ping(lc.Context()); err != nil {
			s.logger.Error("storage ping failed", "error", err)
			return
		}
		s.logger.Info("storage connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.logger.Info("closing storage connection")

		if err := s.client.Close(); err != nil {
			s.logger.Error("storage close failed", "error", err)
			return
		}

		s.logger.Info("storage connection closed")
	})

	return nil
}

// Ping verifies the server answers within the client's dial timeout.
func (s *kv) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.client.Options().DialTimeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("storage ping: %w", err)
	}
	return nil
}

func (s *kv) Close() error {
	return s.client.Close()
}
