package ideas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var textRule = fmt.Sprintf("required,max=%d", MaxTextLength)

// Options tunes catalog behavior.
type Options struct {
	// Timeout bounds each store call. Zero leaves the caller's context as is.
	Timeout time.Duration
}

type catalog struct {
	store    Store
	logger   *slog.Logger
	metrics  *Metrics
	validate *validator.Validate
	timeout  time.Duration
	now      func() time.Time
}

// New creates the idea catalog over the given store. metrics may be nil.
func New(
	store Store,
	logger *slog.Logger,
	metrics *Metrics,
	opts Options,
) System {
	return &catalog{
		store:    store,
		logger:   logger.With("system", "ideas"),
		metrics:  metrics,
		validate: validator.New(),
		timeout:  opts.Timeout,
		now:      now,
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (c *catalog) Handler() *Handler {
	return NewHandler(c, c.logger)
}

func (c *catalog) SeedDefaults(ctx context.Context, texts []string) (int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	count, err := c.store.Count(ctx)
	if err != nil {
		return 0, c.classify("count ideas", err)
	}
	if count > 0 {
		c.logger.Info("catalog already populated, skipping seed", "count", count)
		return 0, nil
	}

	batch := make([]Idea, 0, len(texts))
	for _, raw := range texts {
		text := strings.TrimSpace(raw)
		if err := c.validateText(text); err != nil {
			c.logger.Warn("skipping default idea", "text", raw, "error", err)
			continue
		}
		batch = append(batch, c.newIdea(text, false))
	}

	if len(batch) == 0 {
		return 0, nil
	}

	inserted, err := c.store.InsertMany(ctx, batch)
	if err != nil {
		return 0, c.classify("seed ideas", err)
	}

	c.metrics.seeded(inserted)
	c.logger.Info("seeded default ideas", "count", inserted)
	return inserted, nil
}

func (c *catalog) List(ctx context.Context) ([]Idea, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	list, err := c.store.ListByRecency(ctx)
	if err != nil {
		return nil, c.classify("list ideas", err)
	}
	return list, nil
}

func (c *catalog) Random(ctx context.Context) (*Idea, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	idea, err := c.store.SampleOne(ctx)
	if err != nil {
		if errors.Is(err, ErrEmpty) {
			return nil, ErrNotFound
		}
		return nil, c.classify("sample idea", err)
	}

	c.metrics.drawn()
	return &idea, nil
}

func (c *catalog) Submit(ctx context.Context, raw string) (*Idea, error) {
	text := strings.TrimSpace(raw)
	if err := c.validateText(text); err != nil {
		c.metrics.submitted(resultInvalid)
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	stored, err := c.store.Insert(ctx, c.newIdea(text, true))
	if err != nil {
		if errors.Is(err, ErrConflict) {
			c.metrics.submitted(resultDuplicate)
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, text)
		}
		c.metrics.submitted(resultFailed)
		return nil, c.classify("insert idea", err)
	}

	c.metrics.submitted(resultAccepted)
	c.logger.Info("idea submitted", "id", stored.ID, "text", stored.Text)
	return &stored, nil
}

func (c *catalog) Count(ctx context.Context) (int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	n, err := c.store.Count(ctx)
	if err != nil {
		return 0, c.classify("count ideas", err)
	}
	return n, nil
}

func (c *catalog) newIdea(text string, submitted bool) Idea {
	return Idea{
		ID:            uuid.New(),
		Text:          text,
		CreatedAt:     c.now(),
		UserSubmitted: submitted,
	}
}

func (c *catalog) validateText(text string) error {
	err := c.validate.Var(text, textRule)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "required":
			return fmt.Errorf("%w: text is required", ErrInvalidInput)
		case "max":
			return fmt.Errorf("%w: text exceeds %d characters", ErrInvalidInput, MaxTextLength)
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func (c *catalog) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// classify converts a raw store error into ErrUnavailable or ErrUnknown.
func (c *catalog) classify(op string, err error) error {
	if IsUnavailable(err) {
		c.metrics.storeFailed(kindUnavailable)
		c.logger.Warn("idea store unavailable", "op", op, "error", err)
		if errors.Is(err, ErrUnavailable) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	c.metrics.storeFailed(kindUnknown)
	c.logger.Error("idea store failure", "op", op, "error", err)
	return fmt.Errorf("%s: %w: %w", op, ErrUnknown, err)
}
