// Package categorize assigns a category slug to an article by keyword scoring.
package categorize

import (
	"strings"
)

// Rule lists the keywords that vote for one category
type Rule struct {
	Slug     string   `yaml:"slug" json:"slug"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultRules returns the built-in keyword table in priority order
func DefaultRules() []Rule {
	return []Rule{
		{Slug: "android", Keywords: []string{"android", "kotlin", "jetpack", "compose", "gradle"}},
		{Slug: "ios", Keywords: []string{"ios", "swift", "swiftui", "xcode", "cocoapods"}},
		{Slug: "react-native", Keywords: []string{"react native", "expo", "metro"}},
		{Slug: "flutter", Keywords: []string{"flutter", "dart", "widget"}},
		{Slug: "cross-platform", Keywords: []string{"cross-platform", "multiplatform", "hybrid", "cordova", "ionic"}},
	}
}

// Categorizer scores text against an ordered, immutable rule list. Earlier
// rules win ties.
type Categorizer struct {
	rules []Rule
}

// New copies rules, lower-casing keywords and dropping empty ones
func New(rules []Rule) *Categorizer {
	copied := make([]Rule, 0, len(rules))
	for _, r := range rules {
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		copied = append(copied, Rule{Slug: r.Slug, Keywords: keywords})
	}
	return &Categorizer{rules: copied}
}

// Rules returns a copy of the rule list in priority order
func (c *Categorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Slug: r.Slug, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Score returns the best scoring slug and its score. Each keyword counts
// once when it occurs anywhere in the combined text. A later rule must score
// strictly higher to displace an earlier one. The slug is "" when nothing matched.
func (c *Categorizer) Score(title, summary, content string) (string, int) {
	text := strings.ToLower(title + " " + summary + " " + content)

	best, bestScore := "", 0
	for _, rule := range c.rules {
		score := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = rule.Slug, score
		}
	}
	return best, bestScore
}

// Categorize returns the best scoring slug, or fallback when no keyword matched
func (c *Categorizer) Categorize(title, summary, content, fallback string) string {
	if slug, _ := c.Score(title, summary, content); slug != "" {
		return slug
	}
	return fallback
}
