package helpers

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxSlugBase = 60

// Slugify lower-cases s and joins its letter/digit runs with single dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
		if b.Len() >= maxSlugBase {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}

// UniqueSlug appends a short random suffix so equal titles never collide.
func UniqueSlug(title string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	base := Slugify(title)
	if base == "" {
		return "pool-" + suffix
	}
	return base + "-" + suffix
}
