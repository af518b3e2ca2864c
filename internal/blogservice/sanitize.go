package blogservice

import "regexp"

var scriptTagRX = regexp.MustCompile(`(?is)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

// sanitizeContent strips script tags from user-submitted comment content
// before it is stored.
func sanitizeContent(content string) string {
	return scriptTagRX.ReplaceAllString(content, "")
}
