package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/logging"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Report summarizes one cleanup pass.
type Report struct {
	Attempted  int
	Deleted    int
	Missing    int
	Unresolved int
	Failed     int
}

// Outcome of removing a single object.
type Outcome string

const (
	OutcomeDeleted    Outcome = "deleted"
	OutcomeMissing    Outcome = "missing"
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeFailed     Outcome = "failed"
)

// Cleaner deletes the objects behind download URLs. Every store call is
// bounded by timeout.
type Cleaner struct {
	store    Store
	resolver *Resolver
	timeout  time.Duration
	log      logging.Logger
}

func NewCleaner(store Store, resolver *Resolver, timeout time.Duration, log logging.Logger) *Cleaner {
	return &Cleaner{
		store:    store,
		resolver: resolver,
		timeout:  timeout,
		log:      log.With("module", "blob"),
	}
}

// Purge removes the objects behind urls on a best-effort basis. It never
// fails: problems are logged and counted in the returned Report. The caller's
// cancellation does not stop the pass, since the owning rows are already gone.
func (c *Cleaner) Purge(ctx context.Context, urls ...string) Report {
	ctx = context.WithoutCancel(ctx)
	ctx, span := observability.StartSpan(ctx, "blob", "purge", attribute.Int("blob.count", len(urls)))

	var rep Report
	for _, u := range urls {
		if u == "" {
			continue
		}
		rep.Attempted++

		outcome, err := c.remove(ctx, u)
		observability.BlobCleanupTotal.WithLabelValues(string(outcome)).Inc()

		switch outcome {
		case OutcomeDeleted:
			rep.Deleted++
			c.log.Debug(ctx, "blob deleted", "url", u)
		case OutcomeMissing:
			rep.Missing++
			c.log.Info(ctx, "blob not found, possibly already deleted", "url", u)
		case OutcomeUnresolved:
			rep.Unresolved++
			c.log.Warn(ctx, "blob url not recognized, skipping", "url", u)
		case OutcomeFailed:
			rep.Failed++
			c.log.Warn(ctx, "blob delete failed", "url", u, "error", err)
		}
	}

	span.SetAttributes(
		attribute.Int("blob.deleted", rep.Deleted),
		attribute.Int("blob.failed", rep.Failed),
	)
	observability.EndSpan(span, nil)

	return rep
}

// Remove deletes one object and reports what happened. Unlike Purge it
// returns the error: common.ErrorValidation for an unrecognized URL, the
// store error otherwise.
func (c *Cleaner) Remove(ctx context.Context, rawURL string) (Outcome, error) {
	ctx, span := observability.StartSpan(ctx, "blob", "remove")
	outcome, err := c.remove(ctx, rawURL)
	observability.BlobCleanupTotal.WithLabelValues(string(outcome)).Inc()
	observability.EndSpan(span, err)
	return outcome, err
}

func (c *Cleaner) remove(ctx context.Context, rawURL string) (Outcome, error) {
	key, ok := c.resolver.Key(rawURL)
	if !ok {
		return OutcomeUnresolved, fmt.Errorf("%w: unrecognized blob url", common.ErrorValidation)
	}

	exists, err := c.call(ctx, func(ctx context.Context) (bool, error) {
		return c.store.Exists(ctx, key)
	})
	if err != nil {
		return OutcomeFailed, fmt.Errorf("stat %s: %w", key, err)
	}
	if !exists {
		return OutcomeMissing, nil
	}

	_, err = c.call(ctx, func(ctx context.Context) (bool, error) {
		return true, c.store.Delete(ctx, key)
	})
	if err != nil {
		return OutcomeFailed, fmt.Errorf("delete %s: %w", key, err)
	}

	return OutcomeDeleted, nil
}

func (c *Cleaner) call(ctx context.Context, fn func(context.Context) (bool, error)) (bool, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return fn(ctx)
}
