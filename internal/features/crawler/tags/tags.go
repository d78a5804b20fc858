// Package tags normalises free-form source tags into a bounded, deduplicated
// list of slugged tags.
package tags

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"mobiledev-news/internal/features/crawler/models"
)

const (
	// MaxTagLength is the longest accepted tag name, in characters
	MaxTagLength = 100
	// MaxTagsPerArticle caps the tags kept for one article
	MaxTagsPerArticle = 10
)

var (
	invalidSlugChars = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators   = regexp.MustCompile(`[-\s_]+`)
)

// Process drops empty and oversized tags, slugifies the rest, removes
// duplicates by slug keeping the first spelling seen, and caps the result.
func Process(raw []string) []models.TagCreate {
	seen := make(map[string]bool, len(raw))
	out := make([]models.TagCreate, 0, min(len(raw), MaxTagsPerArticle))

	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" || utf8.RuneCountInString(name) > MaxTagLength {
			continue
		}

		slug := Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		out = append(out, models.TagCreate{Name: name, Slug: slug})
		if len(out) == MaxTagsPerArticle {
			break
		}
	}

	return out
}

// Slugify lower-cases s, folds accented letters to ASCII, drops punctuation
// and joins words with single hyphens
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return unicode.ToLower(r)
	}, folded)

	folded = invalidSlugChars.ReplaceAllString(folded, "")
	folded = slugSeparators.ReplaceAllString(strings.TrimSpace(folded), "-")
	folded = strings.Trim(folded, "-")

	if len(folded) > MaxTagLength {
		folded = strings.TrimRight(folded[:MaxTagLength], "-")
	}
	return folded
}
