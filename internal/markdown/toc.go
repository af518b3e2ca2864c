package markdown

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Heading is a single table-of-contents entry.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

var (
	h2TagRX = regexp.MustCompile(`(?i)<h2[^>]*>(.*?)</h2>`)
	h3TagRX = regexp.MustCompile(`(?i)<h3[^>]*>(.*?)</h3>`)
	idRX    = regexp.MustCompile(`[^a-z0-9]+`)
)

// HeadingID derives the anchor id for a heading's visible text:
// lowercase, runs of non-alphanumeric characters collapsed to a single
// hyphen, leading and trailing hyphens trimmed.
func HeadingID(text string) string {
	id := strings.ToLower(text)
	id = idRX.ReplaceAllString(id, "-")
	return strings.Trim(id, "-")
}

// TableOfContents scans html for h2 and h3 elements in document order and
// returns their visible text with derived anchor ids. Duplicate heading
// text produces duplicate ids; anchor navigation to the second occurrence
// is undefined.
func TableOfContents(html string) []Heading {
	type hit struct {
		pos   int
		level int
		inner string
	}

	var hits []hit
	for _, m := range h2TagRX.FindAllStringSubmatchIndex(html, -1) {
		hits = append(hits, hit{pos: m[0], level: 2, inner: html[m[2]:m[3]]})
	}
	for _, m := range h3TagRX.FindAllStringSubmatchIndex(html, -1) {
		hits = append(hits, hit{pos: m[0], level: 3, inner: html[m[2]:m[3]]})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	headings := make([]Heading, 0, len(hits))
	for _, h := range hits {
		text := strings.TrimSpace(tagRX.ReplaceAllString(h.inner, ""))
		headings = append(headings, Heading{Level: h.level, Text: text, ID: HeadingID(text)})
	}

	return headings
}

// AnchorHeadings rewrites h2 and h3 tags with id attributes derived by
// HeadingID so the TableOfContents entries resolve as anchors.
func AnchorHeadings(html string) string {
	html = anchorLevel(html, h2TagRX, 2)
	html = anchorLevel(html, h3TagRX, 3)
	return html
}

func anchorLevel(html string, rx *regexp.Regexp, level int) string {
	return rx.ReplaceAllStringFunc(html, func(m string) string {
		inner := rx.FindStringSubmatch(m)[1]
		text := strings.TrimSpace(tagRX.ReplaceAllString(inner, ""))
		return fmt.Sprintf("<h%d id=%q>%s</h%d>", level, HeadingID(text), inner, level)
	})
}
