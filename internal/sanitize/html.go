package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all HTML tags and attributes.
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy allows safe user-generated content with basic formatting.
	// Permits headings, paragraphs, emphasis, links, lists, images, and code
	// blocks; strips scripts, iframes, event handlers, and style attributes.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML and returns plain text. Use for titles, names,
// contact subjects and messages, tags.
func Text(input string) string {
	return strictPolicy.Sanitize(input)
}

// HTML sanitizes rich text, keeping safe formatting. Use for blog content,
// showcase and project descriptions.
func HTML(input string) string {
	return ugcPolicy.Sanitize(input)
}

// TextSlice sanitizes each string in a slice, removing all HTML.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	sanitized := make([]string, len(inputs))
	for i, input := range inputs {
		sanitized[i] = Text(input)
	}
	return sanitized
}
