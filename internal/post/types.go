package post

// Post is the structured, validated result of parsing one feed item.
// Immutable once constructed.
type Post struct {
	ID              string
	Title           string
	URL             string
	BodyText        string
	DetectedLink    string
	ImageURL        string
	DiscountPercent int
	HasDiscount     bool
}

// Rules holds the classification sets used by the extractor heuristics.
type Rules struct {
	// ImageHosts are known image-hosting domains, matched as substrings of
	// the whole lowercased URL.
	ImageHosts []string
	// ImageExts are image file-extension substrings, matched anywhere in
	// the lowercased URL, not just as a suffix. Intentionally permissive.
	ImageExts []string
	// SelfDomains are the feed's own domains; links into them are never
	// treated as the detected external link.
	SelfDomains []string
}

// DefaultRules returns the classification sets for Reddit feeds.
func DefaultRules() Rules {
	return Rules{
		ImageHosts:  []string{"i.redd.it", "preview.redd.it", "i.imgur.com"},
		ImageExts:   []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg"},
		SelfDomains: []string{"reddit.com"},
	}
}
