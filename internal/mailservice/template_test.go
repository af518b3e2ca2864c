package mailservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTemplate(t *testing.T) {
	tp := NewTemplate()

	data := struct {
		BlogID     string
		AuthorName string
		Content    string
	}{
		BlogID:     "8b7c9a2e-1111-4222-8333-444455556666",
		AuthorName: "Reader",
		Content:    "what a lovely initiative",
	}

	subject, plainBody, htmlBody, err := tp.ParseTemplate("comment_notification.html", data)
	assert.NoError(t, err)

	assert.Equal(t, "New comment awaiting moderation", subject.String())
	assert.Contains(t, plainBody.String(), "Reader")
	assert.Contains(t, plainBody.String(), "what a lovely initiative")
	assert.Contains(t, htmlBody.String(), "<strong>Reader</strong>")
	assert.Contains(t, htmlBody.String(), data.BlogID)
}

func TestParseTemplateUnknownFile(t *testing.T) {
	tp := NewTemplate()

	_, _, _, err := tp.ParseTemplate("missing.html", nil)
	assert.Error(t, err)
}
