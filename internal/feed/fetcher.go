package feed

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"dealsniper/helpers"
	apperr "dealsniper/pkg/errors"
	"dealsniper/services/cache"
)

const defaultBlockTime = 60 * time.Second

// URLResolver maps a source identifier to its feed URL.
type URLResolver func(sourceID string) string

// HTTPFetcher fetches and parses RSS/Atom feeds over HTTP. When a cache
// service is configured, a source that got rate limited keeps a TTL'd block
// key so later cycles short-circuit without hitting the network.
type HTTPFetcher struct {
	resolve  URLResolver
	cacheSvc cache.CacheService
	parser   *gofeed.Parser
}

// NewHTTPFetcher creates a fetcher. cacheSvc may be nil to disable blocking.
func NewHTTPFetcher(resolve URLResolver, cacheSvc cache.CacheService) *HTTPFetcher {
	return &HTTPFetcher{
		resolve:  resolve,
		cacheSvc: cacheSvc,
		parser:   gofeed.NewParser(),
	}
}

// Fetch retrieves and parses the feed for sourceID, newest items first.
func (f *HTTPFetcher) Fetch(ctx context.Context, sourceID string) ([]Item, error) {
	blockKey := sourceID + "_rate_limited"

	if f.cacheSvc != nil {
		if val, err := f.cacheSvc.Get(blockKey); err == nil {
			secs, _ := strconv.Atoi(string(val))
			return nil, apperr.NewRateLimit(sourceID, time.Duration(secs)*time.Second)
		}
	}

	body, err := helpers.FetchFeed(ctx, sourceID, f.resolve(sourceID))
	if err != nil {
		if hint, ok := apperr.RetryAfterHint(err); ok && f.cacheSvc != nil {
			block := hint
			if block <= 0 {
				block = defaultBlockTime
			}
			f.cacheSvc.Set(blockKey, []byte(fmt.Sprintf("%d", int(block.Seconds()))), block)
		}
		return nil, err
	}

	parsed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, apperr.NewParsing(sourceID, "failed to parse feed", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, normalizeItem(entry))
	}
	return items, nil
}

// normalizeItem maps a gofeed item (including media extensions) to an Item.
func normalizeItem(entry *gofeed.Item) Item {
	item := Item{
		Title:   entry.Title,
		Link:    entry.Link,
		Summary: entry.Description,
		Content: entry.Content,
	}

	media, ok := entry.Extensions["media"]
	if !ok {
		return item
	}

	if thumbs, ok := media["thumbnail"]; ok && len(thumbs) > 0 {
		item.MediaThumbnail = thumbs[0].Attrs["url"]
	}
	if contents, ok := media["content"]; ok {
		for _, c := range contents {
			if url := c.Attrs["url"]; url != "" {
				item.MediaContent = append(item.MediaContent, Media{URL: url})
			}
		}
	}

	return item
}
