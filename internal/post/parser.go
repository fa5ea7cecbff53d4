package post

import (
	"net/url"
	"regexp"
	"strings"

	"dealsniper/internal/feed"
	apperr "dealsniper/pkg/errors"
)

var commentsIDPattern = regexp.MustCompile(`/comments/([^/]+)/`)

// Parser turns raw feed items into Posts. Parsing is pure and deterministic
// for a given affiliate tag.
type Parser struct {
	rules        Rules
	affiliateTag string
}

// NewParser creates a parser with the given classification rules and an
// optional Amazon affiliate tag.
func NewParser(rules Rules, affiliateTag string) *Parser {
	return &Parser{
		rules:        rules,
		affiliateTag: affiliateTag,
	}
}

// Parse converts one raw item into a Post. It fails when the canonical link
// has no /comments/<id>/ segment or the title is empty after trimming.
func (p *Parser) Parse(item feed.Item) (*Post, error) {
	m := commentsIDPattern.FindStringSubmatch(item.Link)
	if m == nil {
		return nil, apperr.NewParsing("", "no post id in link: "+item.Link, nil)
	}
	id := m[1]

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, apperr.NewParsing("", "empty title for post "+id, nil)
	}

	body := strings.TrimSpace(item.Summary)
	if body == "" {
		body = strings.TrimSpace(item.Content)
	}

	cleanText, images, links := p.rules.Clean(body)

	detectedLink := p.rules.DetectExternalLink(body, cleanText, links)
	if detectedLink != "" && p.affiliateTag != "" {
		detectedLink = RewriteAffiliateLink(detectedLink, p.affiliateTag)
	}

	mediaURLs := make([]string, 0, len(item.MediaContent))
	for _, m := range item.MediaContent {
		mediaURLs = append(mediaURLs, m.URL)
	}
	imageURL := p.rules.DetectImage(item.Link, item.MediaThumbnail, mediaURLs, images, cleanText)

	result := &Post{
		ID:           id,
		Title:        title,
		URL:          item.Link,
		BodyText:     cleanText,
		DetectedLink: detectedLink,
		ImageURL:     imageURL,
	}
	result.DiscountPercent, result.HasDiscount = ExtractDiscount(title)

	return result, nil
}

// RewriteAffiliateLink adds or replaces the tag parameter on Amazon product
// links. Rewriting is idempotent; non-Amazon links and links that fail to
// parse pass through unchanged.
func RewriteAffiliateLink(link, tag string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, "amazon.") {
		return link
	}
	q := u.Query()
	q.Set("tag", tag)
	u.RawQuery = q.Encode()
	return u.String()
}
