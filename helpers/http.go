package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/html/charset"

	apperr "dealsniper/pkg/errors"
)

const userAgent = "dealsniper/1.0 (RSS reader)"

// HTTP client with timeout
var client = &http.Client{
	Timeout: 10 * time.Second,
}

// FetchFeed sends an HTTP GET request for a feed, converts the response body
// to UTF-8 if needed, and returns the raw bytes. Rate-limit responses are
// reported as a typed rate-limit error carrying the server's Retry-After hint.
func FetchFeed(ctx context.Context, sourceID, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.NewNetwork(sourceID, "failed to create request", err)
	}

	// Reddit rejects requests without a User-Agent
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.NewNetwork(sourceID, "failed to fetch feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperr.NewRateLimit(sourceID, ParseRetryAfter(resp.Header.Get("Retry-After")))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.NewNetwork(sourceID, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.NewNetwork(sourceID, "failed to read response body", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))
	if name == "utf-8" || name == "UTF-8" {
		return bodyBytes, nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, apperr.NewNetwork(sourceID, "failed to convert body to UTF-8", err)
	}

	return buf.Bytes(), nil
}

// ParseRetryAfter parses a Retry-After header value. It accepts delays in
// seconds or an HTTP date; anything unparsable yields zero so callers fall
// back to their own default.
func ParseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
