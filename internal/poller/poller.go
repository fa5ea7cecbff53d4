package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"dealsniper/internal/feed"
	"dealsniper/internal/post"
	"dealsniper/logger"
	apperr "dealsniper/pkg/errors"
)

const (
	// maxBackoff caps the inter-cycle sleep after repeated failures
	maxBackoff = 60 * time.Second
	// maxBackoffShift bounds the exponential backoff doubling
	maxBackoffShift = 3
	// defaultRetryDelay is used when a rate-limit response carries no hint
	defaultRetryDelay = 5 * time.Second
)

// NotifyFunc receives each newly detected post together with its source. It
// must be safe to call concurrently from multiple pollers.
type NotifyFunc func(p *post.Post, sourceID string) error

// Poller owns one feed source: it primes the seen set once, then polls,
// parses, dedups and emits new posts until stopped. All state is exclusive
// to the poller's goroutine.
type Poller struct {
	sourceID string
	fetcher  feed.Fetcher
	parser   *post.Parser
	notify   NotifyFunc
	interval time.Duration
	log      *logger.Logger

	seenIDs             map[string]struct{}
	consecutiveFailures int

	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a poller for one source.
func NewPoller(sourceID string, fetcher feed.Fetcher, parser *post.Parser, notify NotifyFunc, interval time.Duration) *Poller {
	return &Poller{
		sourceID: sourceID,
		fetcher:  fetcher,
		parser:   parser,
		notify:   notify,
		interval: interval,
		log:      logger.ForSource(sourceID),
		seenIDs:  make(map[string]struct{}),
		stopCh:   make(chan struct{}),
	}
}

// Start runs the prime-then-poll loop until the context is cancelled or
// Stop is called. It blocks; run it in its own goroutine.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-p.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	p.running.Store(true)
	defer p.running.Store(false)

	p.prime(ctx)

	for {
		if ctx.Err() != nil {
			return
		}
		p.pollOnce(ctx)
		if !sleepCtx(ctx, Backoff(p.interval, p.consecutiveFailures)) {
			return
		}
	}
}

// Stop requests the loop to exit. The poller stops at the next cycle or
// item boundary without waiting out a full sleep interval.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Running reports whether the poll loop is active.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// SeenCount returns the size of the dedup set.
func (p *Poller) SeenCount() int {
	return len(p.seenIDs)
}

// prime seeds the seen set from the current feed without notifying, so a
// restart does not flood the endpoint with pre-existing posts. A failed
// initial fetch leaves the set empty; the first successful cycle may then
// produce a burst.
func (p *Poller) prime(ctx context.Context) {
	items, err := p.fetchWithRetry(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("Initial fetch failed, starting with empty seen set")
		return
	}

	for _, item := range items {
		parsed, err := p.parser.Parse(item)
		if err != nil {
			continue
		}
		p.seenIDs[parsed.ID] = struct{}{}
	}

	p.log.Info().Int("seen", len(p.seenIDs)).Msg("Primed seen posts")
}

// pollOnce runs a single poll cycle: fetch, then process items oldest first.
func (p *Poller) pollOnce(ctx context.Context) {
	items, err := p.fetchWithRetry(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.consecutiveFailures++
		p.log.Warn().
			Err(err).
			Int("consecutive_failures", p.consecutiveFailures).
			Msg("Fetch failed, skipping cycle")
		return
	}
	p.consecutiveFailures = 0

	// The feed is newest first; process oldest first to keep
	// chronological order within the source.
	for i := len(items) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return
		}
		p.processItem(items[i])
	}
}

// processItem parses one item and notifies if it has not been seen. The id
// stays in the seen set even when the callback fails: one notification
// attempt per new post per process lifetime.
func (p *Poller) processItem(item feed.Item) {
	parsed, err := p.parser.Parse(item)
	if err != nil {
		p.log.Debug().Err(err).Msg("Skipping unparsable item")
		return
	}

	if _, seen := p.seenIDs[parsed.ID]; seen {
		return
	}
	p.seenIDs[parsed.ID] = struct{}{}

	p.log.Info().
		Str("post_id", parsed.ID).
		Str("title", truncate(parsed.Title, 50)).
		Msg("New post detected")

	p.safeNotify(parsed)
}

// safeNotify shields the loop from a failing or panicking callback.
func (p *Poller) safeNotify(parsed *post.Post) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Str("post_id", parsed.ID).Msg("Notify callback panicked")
		}
	}()

	if err := p.notify(parsed, p.sourceID); err != nil {
		p.log.Error().Err(err).Str("post_id", parsed.ID).Msg("Notify callback failed")
	}
}

// fetchWithRetry fetches the feed once, and on a rate-limit response sleeps
// for the server's hint (or a fixed default) and retries exactly once.
func (p *Poller) fetchWithRetry(ctx context.Context) ([]feed.Item, error) {
	items, err := p.fetcher.Fetch(ctx, p.sourceID)
	hint, rateLimited := apperr.RetryAfterHint(err)
	if !rateLimited {
		return items, err
	}

	if hint <= 0 {
		hint = defaultRetryDelay
	}
	p.log.Warn().Dur("retry_after", hint).Msg("Rate limited, retrying once")
	if !sleepCtx(ctx, hint) {
		return nil, err
	}

	return p.fetcher.Fetch(ctx, p.sourceID)
}

// Backoff computes the inter-cycle sleep: the base interval while healthy,
// doubling per consecutive failure up to 2^3, capped at 60s.
func Backoff(base time.Duration, consecutiveFailures int) time.Duration {
	if consecutiveFailures <= 0 {
		return base
	}
	shift := consecutiveFailures
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	d := base << shift
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// sleepCtx sleeps for d unless the context is cancelled first. It returns
// false when the sleep was interrupted.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// truncate shortens s for logging.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
