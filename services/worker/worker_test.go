package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dealsniper/config"
	"dealsniper/internal/feed"
	"dealsniper/services/notifier"
)

// countingFetcher returns an empty feed on the priming fetch and a single
// new item on every later fetch.
type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *countingFetcher) Fetch(ctx context.Context, sourceID string) ([]feed.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[sourceID]++
	if f.calls[sourceID] == 1 {
		return nil, nil
	}
	return []feed.Item{{
		Title: "53% off Lego Set",
		Link:  "https://www.reddit.com/r/" + sourceID + "/comments/" + sourceID + "1/x/",
	}}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []notifier.Payload
}

func (n *recordingNotifier) Send(ctx context.Context, payload notifier.Payload) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
	return true
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.payloads)
}

func testConfig() *config.Config {
	return &config.Config{
		WebhookURL:   "https://discord.com/api/webhooks/1/x",
		RoleMention:  "<@&123>",
		Subreddits:   []string{"legodeal", "buildapcsales"},
		PollInterval: 10 * time.Millisecond,
		ImageHosts:   []string{"i.redd.it"},
		ImageExts:    []string{".jpg"},
		SelfDomains:  []string{"reddit.com"},
	}
}

func TestWorkerRoutesPostsToNotifier(t *testing.T) {
	fetcher := &countingFetcher{calls: make(map[string]int)}
	sender := &recordingNotifier{}

	w := NewWorker(testConfig(), fetcher, sender)
	w.Start(context.Background())
	defer w.Stop()

	// one notification per source, then dedup keeps it quiet
	assert.Eventually(t, func() bool { return sender.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, sender.count())

	sender.mu.Lock()
	defer sender.mu.Unlock()
	titles := map[string]bool{}
	for _, p := range sender.payloads {
		assert.Len(t, p.Embeds, 1)
		titles[p.Embeds[0].Footer.Text] = true
		// 53% > threshold, mention configured
		assert.Contains(t, p.Content, "<@&123>")
	}
	assert.True(t, titles["r/legodeal"])
	assert.True(t, titles["r/buildapcsales"])
}

func TestWorkerStopWaitsForPollers(t *testing.T) {
	fetcher := &countingFetcher{calls: make(map[string]int)}
	sender := &recordingNotifier{}

	cfg := testConfig()
	cfg.PollInterval = time.Hour

	w := NewWorker(cfg, fetcher, sender)
	w.Start(context.Background())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop promptly")
	}

	for _, p := range w.pollers {
		assert.False(t, p.Running())
	}
}
