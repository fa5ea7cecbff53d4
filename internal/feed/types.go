package feed

import "context"

// Media represents one media:thumbnail or media:content entry on an item.
type Media struct {
	URL string
}

// Item is one raw entry of a fetched feed, pre-parsing.
type Item struct {
	Title          string
	Link           string
	Summary        string
	Content        string
	MediaThumbnail string
	MediaContent   []Media
}

// Fetcher retrieves the current items of one source, newest first.
type Fetcher interface {
	Fetch(ctx context.Context, sourceID string) ([]Item, error)
}
