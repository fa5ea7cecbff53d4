package notifier

import (
	"dealsniper/internal/post"
)

const (
	embedColor     = 16711680 // red
	maxDescription = 2000
	baseContent    = "\U0001F514 New deal posted!"

	// mentionThreshold is the discount above which the configured role
	// gets pinged.
	mentionThreshold = 50
)

// FormatPost builds the webhook payload for one detected post. mention is an
// optional role token prepended for deals above the mention threshold.
func FormatPost(p *post.Post, sourceID, mention string) Payload {
	description := p.BodyText
	if description == "" {
		description = "No description"
	} else if runes := []rune(description); len(runes) > maxDescription {
		description = string(runes[:maxDescription])
	}

	embed := Embed{
		Title:       p.Title,
		URL:         p.URL,
		Description: description,
		Color:       embedColor,
		Footer:      &Footer{Text: "r/" + sourceID},
	}

	if p.ImageURL != "" {
		embed.Image = &Image{URL: p.ImageURL}
	}

	if p.DetectedLink != "" && p.DetectedLink != p.ImageURL {
		embed.Fields = []Field{{
			Name:  "LINK",
			Value: p.DetectedLink,
		}}
	}

	content := baseContent
	if mention != "" && p.HasDiscount && p.DiscountPercent > mentionThreshold {
		content = mention + " " + content
	}

	return Payload{
		Content: content,
		Embeds:  []Embed{embed},
	}
}
