package post

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// primaryBodyClass marks the container Reddit wraps the post body in.
const primaryBodyClass = ".md"

var (
	// urlPattern matches the longest run starting at http(s)://, excluding
	// whitespace and regex-hostile punctuation, and not ending in trailing
	// punctuation.
	urlPattern = regexp.MustCompile("(?i)https?://[^\\s<>\"{}|\\\\^`\\[\\]]+[^\\s<>\"{}|\\\\^`\\[\\].,;:!?]")

	discountOffPattern  = regexp.MustCompile(`(?i)(\d+)%\s*off`)
	discountBarePattern = regexp.MustCompile(`(\d+)%`)

	commentPattern    = regexp.MustCompile(`(?s)<!--.*?-->`)
	scriptPattern     = regexp.MustCompile(`(?is)<script.*?</script>`)
	stylePattern      = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Clean parses a raw item body (possibly HTML) and returns the cleaned plain
// text plus the image sources and external hrefs found, in document order.
func (r Rules) Clean(body string) (text string, images []string, links []string) {
	if strings.TrimSpace(body) == "" {
		return "", nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return collapse(stripTags(body)), nil, nil
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			images = append(images, src)
		}
	})

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			links = append(links, href)
		}
	})

	doc.Find("script, style").Remove()

	if md := doc.Find(primaryBodyClass); md.Length() > 0 {
		text = md.Text()
	} else {
		text = doc.Text()
	}

	if strings.TrimSpace(text) == "" {
		text = stripTags(body)
	}

	return collapse(text), images, links
}

// stripTags is the pattern-matching fallback when structural parsing yields
// no usable text: comments, then script/style blocks, then remaining tags,
// then entity decoding.
func stripTags(body string) string {
	body = commentPattern.ReplaceAllString(body, " ")
	body = scriptPattern.ReplaceAllString(body, " ")
	body = stylePattern.ReplaceAllString(body, " ")
	body = tagPattern.ReplaceAllString(body, " ")
	return html.UnescapeString(body)
}

// collapse folds consecutive whitespace into single spaces.
func collapse(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// IsImageURL reports whether a URL looks like an image: hosted on a known
// image domain, or carrying an image extension substring anywhere in the
// URL. False positives are possible and accepted.
func (r Rules) IsImageURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	lower := strings.ToLower(rawURL)

	for _, host := range r.ImageHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	for _, ext := range r.ImageExts {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

// isSelfLink reports whether the URL points at the feed's own domain.
func (r Rules) isSelfLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range r.SelfDomains {
		if strings.Contains(host, domain) {
			return true
		}
	}
	return false
}

// DetectExternalLink picks the post's external link: first a structural
// candidate that is neither an image nor a self link, then a generic URL
// match over the raw body under the same exclusions, then the first URL in
// the clean text.
func (r Rules) DetectExternalLink(rawBody, cleanText string, candidates []string) string {
	for _, link := range candidates {
		if !r.IsImageURL(link) && !r.isSelfLink(link) {
			return link
		}
	}

	for _, link := range urlPattern.FindAllString(rawBody, -1) {
		if !r.IsImageURL(link) && !r.isSelfLink(link) {
			return link
		}
	}

	if link := urlPattern.FindString(cleanText); link != "" {
		return link
	}
	return ""
}

// DetectImage picks a representative image: structural candidates first,
// then the feed thumbnail, then higher-resolution media entries, then the
// item's own URL, then URLs scanned out of the clean text.
func (r Rules) DetectImage(itemURL, mediaThumbnail string, mediaContent []string, candidates []string, cleanText string) string {
	for _, img := range candidates {
		if r.IsImageURL(img) {
			return img
		}
	}

	if mediaThumbnail != "" && r.IsImageURL(mediaThumbnail) {
		return mediaThumbnail
	}

	for _, mediaURL := range mediaContent {
		if r.IsImageURL(mediaURL) {
			return mediaURL
		}
	}

	if r.IsImageURL(itemURL) {
		return itemURL
	}

	for _, link := range urlPattern.FindAllString(cleanText, -1) {
		if r.IsImageURL(link) {
			return link
		}
	}
	return ""
}

// ExtractDiscount pulls a discount percentage out of a post title. An
// explicit "N% off" wins; a bare "N%" in [1,100] counts only when the title
// also carries "off", a slash, or a second percent sign. Best effort, first
// match in a left-to-right scan.
func ExtractDiscount(title string) (int, bool) {
	if m := discountOffPattern.FindStringSubmatch(title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}

	m := discountBarePattern.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 100 {
		return 0, false
	}

	lower := strings.ToLower(title)
	if strings.Contains(lower, "off") || strings.Contains(title, "/") || strings.Count(title, "%") >= 2 {
		return n, true
	}
	return 0, false
}
