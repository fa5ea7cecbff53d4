package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	rules := DefaultRules()

	body := `<!-- SC_OFF --><div class="md"><p>Price drop at
	<a href="https://www.amazon.com/dp/B0TEST">Amazon</a> &amp; more</p>
	<img src="https://i.redd.it/pic1.jpg" />
	<a href="/r/legodeal/wiki">wiki</a></div><!-- SC_ON -->`

	text, images, links := rules.Clean(body)
	assert.Equal(t, "Price drop at Amazon & more wiki", text)
	assert.Equal(t, []string{"https://i.redd.it/pic1.jpg"}, images)
	// relative hrefs are not link candidates
	assert.Equal(t, []string{"https://www.amazon.com/dp/B0TEST"}, links)
}

func TestCleanPlainText(t *testing.T) {
	rules := DefaultRules()

	text, images, links := rules.Clean("just   a\nplain    body")
	assert.Equal(t, "just a plain body", text)
	assert.Empty(t, images)
	assert.Empty(t, links)
}

func TestCleanEmpty(t *testing.T) {
	rules := DefaultRules()

	text, images, links := rules.Clean("   ")
	assert.Equal(t, "", text)
	assert.Empty(t, images)
	assert.Empty(t, links)
}

func TestCleanDropsScriptAndStyle(t *testing.T) {
	rules := DefaultRules()

	body := `<div class="md">visible</div><script>var hidden = 1;</script><style>.x{}</style>`
	text, _, _ := rules.Clean(body)
	assert.Equal(t, "visible", text)
}

func TestIsImageURL(t *testing.T) {
	rules := DefaultRules()

	assert.True(t, rules.IsImageURL("https://i.redd.it/abc123"))
	assert.True(t, rules.IsImageURL("https://example.com/photo.png"))
	// extension substrings match anywhere, including the query string
	assert.True(t, rules.IsImageURL("https://example.com/page?ref=x.jpg"))
	assert.False(t, rules.IsImageURL("https://example.com/product"))
	assert.False(t, rules.IsImageURL(""))
}

func TestDetectExternalLink(t *testing.T) {
	rules := DefaultRules()

	// First tier: structural candidates, skipping images and self links
	link := rules.DetectExternalLink("", "", []string{
		"https://i.redd.it/pic.jpg",
		"https://www.reddit.com/r/legodeal/comments/abc/x/",
		"https://store.example.com/item",
	})
	assert.Equal(t, "https://store.example.com/item", link)

	// Second tier: generic URL scan over the raw body
	raw := `no anchors here, but https://www.reddit.com/self and https://shop.example.com/deal?id=1 appear`
	link = rules.DetectExternalLink(raw, "", nil)
	assert.Equal(t, "https://shop.example.com/deal?id=1", link)

	// Third tier: first URL in the clean text, no exclusions
	link = rules.DetectExternalLink("", "see https://i.redd.it/pic.jpg", nil)
	assert.Equal(t, "https://i.redd.it/pic.jpg", link)

	assert.Equal(t, "", rules.DetectExternalLink("nothing", "nothing", nil))
}

func TestDetectExternalLinkStripsTrailingPunctuation(t *testing.T) {
	rules := DefaultRules()

	link := rules.DetectExternalLink("check https://shop.example.com/deal.", "", nil)
	assert.Equal(t, "https://shop.example.com/deal", link)
}

func TestDetectImage(t *testing.T) {
	rules := DefaultRules()

	// Structural candidates win
	img := rules.DetectImage(
		"https://www.reddit.com/r/legodeal/comments/abc/x/",
		"https://i.redd.it/thumb.jpg",
		[]string{"https://i.redd.it/full.jpg"},
		[]string{"https://preview.redd.it/inline.png"},
		"",
	)
	assert.Equal(t, "https://preview.redd.it/inline.png", img)

	// Then the feed thumbnail
	img = rules.DetectImage("https://www.reddit.com/r/legodeal/comments/abc/x/",
		"https://i.redd.it/thumb.jpg", []string{"https://i.redd.it/full.jpg"}, nil, "")
	assert.Equal(t, "https://i.redd.it/thumb.jpg", img)

	// Then higher-resolution media entries
	img = rules.DetectImage("https://www.reddit.com/r/legodeal/comments/abc/x/",
		"", []string{"https://i.redd.it/full.jpg"}, nil, "")
	assert.Equal(t, "https://i.redd.it/full.jpg", img)

	// Then the item URL itself for direct image posts
	img = rules.DetectImage("https://i.imgur.com/direct.gif", "", nil, nil, "")
	assert.Equal(t, "https://i.imgur.com/direct.gif", img)

	// Finally a scan over the clean text
	img = rules.DetectImage("https://www.reddit.com/r/legodeal/comments/abc/x/",
		"", nil, nil, "photo at https://cdn.example.com/box.jpeg here")
	assert.Equal(t, "https://cdn.example.com/box.jpeg", img)

	assert.Equal(t, "", rules.DetectImage("https://www.reddit.com/r/legodeal/comments/abc/x/", "", nil, nil, ""))
}

func TestExtractDiscount(t *testing.T) {
	cases := []struct {
		title string
		want  int
		ok    bool
	}{
		{"53% off Lego Set", 53, true},
		{"$61.39/53% off", 53, true},
		{"New set announced", 0, false},
		{"Save 17%", 0, false},
		{"Save 17% off retail", 17, true},
		{"50%/75% clearance", 50, true},
		{"Was 100% now 20%", 100, true},
		{"0 results", 0, false},
	}

	for _, tc := range cases {
		got, ok := ExtractDiscount(tc.title)
		assert.Equal(t, tc.ok, ok, tc.title)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.title)
		}
	}
}
