package notifier

import "context"

// Payload is a Discord-compatible webhook message.
type Payload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed is one rich-content block of a Payload.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Image       *Image  `json:"image,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

// Footer is the embed footer line.
type Footer struct {
	Text string `json:"text,omitempty"`
}

// Image is the embed image block.
type Image struct {
	URL string `json:"url,omitempty"`
}

// Field is one labeled key/value row of an embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Notifier delivers a payload to the configured endpoint. Delivery failures
// are reported as a boolean, never as a panic or fatal error, and Send must
// tolerate concurrent calls.
type Notifier interface {
	Send(ctx context.Context, payload Payload) bool
}
