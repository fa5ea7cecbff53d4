package worker

import (
	"context"
	"sync"

	"dealsniper/config"
	"dealsniper/internal/feed"
	"dealsniper/internal/poller"
	"dealsniper/internal/post"
	"dealsniper/logger"
	"dealsniper/services/notifier"
)

// Worker orchestrates one poller per configured source and routes every
// detected post to the notifier. Pollers own their state; the worker only
// starts, stops and fans in.
type Worker struct {
	pollers  []*poller.Poller
	notifier notifier.Notifier
	mention  string
	log      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker wires a poller per subreddit onto the shared fetcher and sender.
func NewWorker(cfg *config.Config, fetcher feed.Fetcher, sender notifier.Notifier) *Worker {
	w := &Worker{
		notifier: sender,
		mention:  cfg.RoleMention,
		log:      logger.ForWorker(),
	}

	parser := post.NewParser(post.Rules{
		ImageHosts:  cfg.ImageHosts,
		ImageExts:   cfg.ImageExts,
		SelfDomains: cfg.SelfDomains,
	}, cfg.AffiliateTag)

	for _, sub := range cfg.Subreddits {
		w.pollers = append(w.pollers, poller.NewPoller(sub, fetcher, parser, w.handlePost, cfg.PollInterval))
	}
	return w
}

// Start launches all pollers concurrently. It does not block.
func (w *Worker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.ctx = ctx
	w.cancel = cancel

	for _, p := range w.pollers {
		w.wg.Add(1)
		go func(p *poller.Poller) {
			defer w.wg.Done()
			p.Start(ctx)
		}(p)
	}

	w.log.Info().Int("sources", len(w.pollers)).Msg("Started pollers")
}

// Stop requests every poller to stop and waits for all of them to exit.
func (w *Worker) Stop() {
	for _, p := range w.pollers {
		p.Stop()
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Info().Msg("All pollers stopped")
}

// handlePost formats and sends one detected post. A failed send is logged
// and never retried for that post.
func (w *Worker) handlePost(p *post.Post, sourceID string) error {
	payload := notifier.FormatPost(p, sourceID, w.mention)

	if w.notifier.Send(w.ctx, payload) {
		w.log.Info().Str("source", sourceID).Str("post_id", p.ID).Msg("Sent notification")
	} else {
		w.log.Error().Str("source", sourceID).Str("post_id", p.ID).Msg("Failed to send notification")
	}
	return nil
}
