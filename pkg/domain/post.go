package domain

import (
	"io"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Post is a blog-style entry pinned to one tenant.
type Post struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	ImageName   string    `json:"imageName"`
	TenantID    string    `json:"tenantId"`
}

// PostImage is an uploaded image file to attach to a post write.
type PostImage struct {
	Filename string
	Reader   io.Reader
}

// PostInput is a post create/update submission.
// Image is nil when the image is unchanged.
type PostInput struct {
	Title         string
	Description   string
	ExistingImage string
	Image         *PostImage
}

// Slug returns the slug derived from the title.
func (in PostInput) Slug() string {
	return Slugify(in.Title)
}

// Validate checks required fields. An image is required either as an existing
// file name or a new upload.
func (in PostInput) Validate(editing bool) error {
	v := NewValidationError()
	if in.Title == "" {
		v.Add("title", "form.required")
	}
	if in.Slug() == "" {
		v.Add("slug", "form.required")
	}
	if in.Description == "" {
		v.Add("description", "form.required")
	}
	if in.ExistingImage == "" && in.Image == nil {
		if editing {
			v.Add("image", "posts.image_required")
		} else {
			v.Add("image", "form.required")
		}
	}
	return v.Err()
}

var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

// Slugify lower-cases s, strips combining diacritical marks (U+0300–U+036F)
// after NFD decomposition and replaces each whitespace run with a hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	stripped, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		stripped = strings.ToLower(s)
	}
	return whitespaceRun.ReplaceAllString(stripped, "-")
}

var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}
