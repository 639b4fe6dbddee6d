// Package translate implements the batched translation pipeline: it
// projects parsed dump rows onto named records, ships their translatable
// text to a Translator in bounded ordered batches with retry, and re-zips
// the results onto their originating rows positionally.
package translate

import (
	"context"
	"fmt"
	"time"
)

// Translator is the external translation capability. Implementations must
// return exactly one result per input text, in input order.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string) ([]string, error)
}

// LocaleTarget pairs an output locale code with the provider language
// code used to reach it. The first target in a list is the base/source
// locale and is written through untranslated.
type LocaleTarget struct {
	// Locale is the code written to the output (e.g. "pt").
	Locale string
	// Lang is the provider target code (e.g. "PT-BR").
	Lang string
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls batching and retry behavior.
type Options struct {
	// SourceLang is the provider source language code (empty = detect).
	SourceLang string
	// BatchSize is the maximum number of strings per provider call.
	// Default: 50.
	BatchSize int
	// MaxAttempts is how many times a failing batch is tried before the
	// failure is propagated. Default: 4.
	MaxAttempts int
	// BaseDelay is the backoff unit; attempt n waits BaseDelay×n before
	// retrying. Default: 2s.
	BaseDelay time.Duration
	// BatchDelay is the pause after each successful batch, to stay under
	// provider rate limits. Default: 500ms.
	BatchDelay time.Duration
	// OnProgress is called after each successful batch.
	OnProgress func(lang string, done, total int)
	// OnLog emits log messages (retry notices, skip counts).
	OnLog func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return 50
}

func (o *Options) effectiveMaxAttempts() int {
	if o.MaxAttempts > 0 {
		return o.MaxAttempts
	}
	return 4
}

func (o *Options) effectiveBaseDelay() time.Duration {
	if o.BaseDelay > 0 {
		return o.BaseDelay
	}
	return 2 * time.Second
}

func (o *Options) effectiveBatchDelay() time.Duration {
	if o.BatchDelay > 0 {
		return o.BatchDelay
	}
	return 500 * time.Millisecond
}

// ---------------------------------------------------------------------------
// Batcher
// ---------------------------------------------------------------------------

// TranslateAll translates texts into targetLang, splitting them into
// batches of at most Options.BatchSize in order. Batches are issued
// strictly sequentially; each failed call is retried with linear backoff
// up to MaxAttempts, and exhaustion propagates the last error so the
// caller can discard the locale's partial results. The returned slice is
// parallel to texts.
func TranslateAll(ctx context.Context, tr Translator, texts []string, targetLang string, opts *Options) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	size := opts.effectiveBatchSize()
	total := len(texts)
	out := make([]string, 0, total)

	for i := 0; i < total; i += size {
		end := i + size
		if end > total {
			end = total
		}
		batch := texts[i:end]

		translated, err := translateWithRetries(ctx, tr, batch, targetLang, opts)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d for %s: %w", i, end, targetLang, err)
		}
		out = append(out, translated...)

		if opts.OnProgress != nil {
			opts.OnProgress(targetLang, end, total)
		}
		if end < total {
			if err := sleepCtx(ctx, opts.effectiveBatchDelay()); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// translateWithRetries issues one provider call per attempt. A response
// whose length does not match the batch counts as a failure like any
// network or status error.
func translateWithRetries(ctx context.Context, tr Translator, batch []string, targetLang string, opts *Options) ([]string, error) {
	maxAttempts := opts.effectiveMaxAttempts()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		translated, err := tr.TranslateBatch(ctx, batch, targetLang, opts.SourceLang)
		if err == nil && len(translated) != len(batch) {
			err = fmt.Errorf("got %d translations for %d texts", len(translated), len(batch))
		}
		if err == nil {
			return translated, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		wait := opts.effectiveBaseDelay() * time.Duration(attempt)
		opts.log("translation attempt %d/%d failed: %v (retrying in %v)", attempt, maxAttempts, err, wait)
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
