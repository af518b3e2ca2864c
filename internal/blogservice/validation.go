package blogservice

import (
	"regexp"

	"github.com/mapleroot/pressroom/internal/common"
)

var (
	SlugRX  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	EmailRX = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 200), "title", "must not be more than 200 characters long")
}

func validateSlug(v *common.Validator, slug string) {
	v.Check(slug != "", "slug", "must be provided")
	v.Check(SlugRX.MatchString(slug), "slug", "must only contain lowercase letters, numbers, and hyphens")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateAuthorName(v *common.Validator, name string) {
	v.Check(name != "", "author_name", "must be provided")
	v.Check(v.CheckStringLength(name, 1, 100), "author_name", "must not be more than 100 characters long")
}

func validateAuthorEmail(v *common.Validator, email string) {
	v.Check(email != "", "author_email", "must be provided")
	v.Check(EmailRX.MatchString(email), "author_email", "must be a valid email address")
}
