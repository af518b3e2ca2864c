// Package markdown converts the lightweight markup subset used by the
// legacy blog content into HTML and derives excerpts and tables of
// contents from the result. The conversion is a fixed sequence of regex
// substitutions, not a full Markdown implementation; malformed input
// degrades gracefully instead of erroring.
package markdown

import (
	"regexp"
	"strings"
)

const excerptLength = 160

var (
	h3RX     = regexp.MustCompile(`(?m)^### (.*)$`)
	h2RX     = regexp.MustCompile(`(?m)^## (.*)$`)
	h1RX     = regexp.MustCompile(`(?m)^# (.*)$`)
	boldRX   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRX = regexp.MustCompile(`\*(.*?)\*`)
	fencedRX = regexp.MustCompile("```" + `(\w+)?\n([\s\S]*?)` + "```")
	codeRX   = regexp.MustCompile("`(.*?)`")
	linkRX   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	tagRX    = regexp.MustCompile(`<[^>]*>`)
)

// ToHTML converts markup to HTML. The substitution order matters: bold
// must run before italic so a single * pair inside ** is not
// misinterpreted, and fenced code blocks must run before inline code.
// Each step operates on the output of the previous one.
func ToHTML(markup string) string {
	s := h3RX.ReplaceAllString(markup, "<h3>$1</h3>")
	s = h2RX.ReplaceAllString(s, "<h2>$1</h2>")
	s = h1RX.ReplaceAllString(s, "<h1>$1</h1>")

	s = boldRX.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRX.ReplaceAllString(s, "<em>$1</em>")

	s = fencedRX.ReplaceAllString(s, "<pre><code>$2</code></pre>")
	s = codeRX.ReplaceAllString(s, "<code>$1</code>")

	s = linkRX.ReplaceAllString(s, `<a href="$2">$1</a>`)

	segments := strings.Split(s, "\n\n")
	paragraphs := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		// Segments produced by the steps above are already HTML blocks.
		if strings.HasPrefix(seg, "<") {
			paragraphs = append(paragraphs, seg)
			continue
		}

		paragraphs = append(paragraphs, "<p>"+strings.ReplaceAll(seg, "\n", "<br>")+"</p>")
	}

	return strings.Join(paragraphs, "\n\n")
}

// Excerpt returns the explicit excerpt when one is provided. Otherwise it
// strips all tags from html and truncates the plain text to 160
// characters, appending "..." when truncation happened.
func Excerpt(html, explicit string) string {
	if explicit != "" {
		return explicit
	}

	text := tagRX.ReplaceAllString(html, "")
	runes := []rune(text)
	if len(runes) <= excerptLength {
		return text
	}

	return string(runes[:excerptLength]) + "..."
}
