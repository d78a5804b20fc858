// Package sources holds the ordered list of crawlable sources and loads it
// from YAML.
package sources

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mobiledev-news/internal/features/crawler/categorize"
	"mobiledev-news/internal/features/crawler/models"
)

// Kind selects the adapter family for a source
type Kind string

const (
	KindFeed   Kind = "feed"
	KindReddit Kind = "reddit"
)

var (
	ErrUnknownSource = errors.New("unknown source")
	ErrInvalidSource = errors.New("invalid source definition")
)

// Spec describes one crawlable source
type Spec struct {
	Key             string `yaml:"key" json:"key"`
	Name            string `yaml:"name" json:"name"`
	Kind            Kind   `yaml:"kind" json:"kind"`
	SiteURL         string `yaml:"site_url" json:"site_url"`
	FeedURL         string `yaml:"feed_url,omitempty" json:"feed_url,omitempty"`
	Subreddit       string `yaml:"subreddit,omitempty" json:"subreddit,omitempty"`
	Limit           int    `yaml:"limit,omitempty" json:"limit,omitempty"`
	Listing         string `yaml:"listing,omitempty" json:"listing,omitempty"`
	DefaultCategory string `yaml:"default_category" json:"default_category"`
	Disabled        bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// SourceType is the storage classification derived from the site URL
func (s Spec) SourceType() models.SourceType {
	return models.SourceTypeForURL(s.SiteURL)
}

// Registry is an ordered, read-only set of source specs plus the keyword
// rules used to categorize their articles
type Registry struct {
	specs []Spec
	index map[string]int
	rules []categorize.Rule
}

type registryFile struct {
	Sources    []Spec            `yaml:"sources"`
	Categories []categorize.Rule `yaml:"categories"`
}

// NewRegistry validates specs and builds a registry. A nil rules slice
// selects the built-in keyword table.
func NewRegistry(specs []Spec, rules []categorize.Rule) (*Registry, error) {
	r := &Registry{
		specs: make([]Spec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
		rules: rules,
	}
	if len(r.rules) == 0 {
		r.rules = categorize.DefaultRules()
	}

	for _, spec := range specs {
		spec = withDefaults(spec)
		if err := spec.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[spec.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidSource, spec.Key)
		}
		r.index[spec.Key] = len(r.specs)
		r.specs = append(r.specs, spec)
	}

	return r, nil
}

// Load reads a registry from a YAML file
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("%w: %s lists no sources", ErrInvalidSource, path)
	}

	return NewRegistry(file.Sources, file.Categories)
}

// LoadOrDefault loads path, or returns the built-in registry when path is empty
func LoadOrDefault(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return Load(path)
}

// Get returns the spec registered under key
func (r *Registry) Get(key string) (Spec, error) {
	i, ok := r.index[key]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s (available: %s)", ErrUnknownSource, key, strings.Join(r.Keys(), ", "))
	}
	return r.specs[i], nil
}

// All returns the enabled specs in registry order
func (r *Registry) All() []Spec {
	out := make([]Spec, 0, len(r.specs))
	for _, spec := range r.specs {
		if !spec.Disabled {
			out = append(out, spec)
		}
	}
	return out
}

// ByKind returns the enabled specs of one kind in registry order
func (r *Registry) ByKind(kind Kind) []Spec {
	var out []Spec
	for _, spec := range r.All() {
		if spec.Kind == kind {
			out = append(out, spec)
		}
	}
	return out
}

// Keys returns every registered key in order, disabled ones included
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.specs))
	for i, spec := range r.specs {
		keys[i] = spec.Key
	}
	return keys
}

// Rules returns the keyword rules configured for categorization
func (r *Registry) Rules() []categorize.Rule {
	return r.rules
}

func withDefaults(s Spec) Spec {
	s.Key = strings.TrimSpace(s.Key)
	s.Kind = Kind(strings.ToLower(string(s.Kind)))
	if s.Kind == KindReddit {
		if s.SiteURL == "" && s.Subreddit != "" {
			s.SiteURL = "https://reddit.com/r/" + s.Subreddit
		}
		if s.Name == "" && s.Subreddit != "" {
			s.Name = "Reddit: r/" + s.Subreddit
		}
		if s.Listing == "" {
			s.Listing = "hot"
		}
	}
	if s.DefaultCategory == "" {
		s.DefaultCategory = models.FallbackCategorySlug
	}
	return s
}

func (s Spec) validate() error {
	if s.Key == "" {
		return fmt.Errorf("%w: missing key", ErrInvalidSource)
	}
	if s.Name == "" || s.SiteURL == "" {
		return fmt.Errorf("%w: %s needs name and site_url", ErrInvalidSource, s.Key)
	}
	switch s.Kind {
	case KindFeed:
		if s.FeedURL == "" {
			return fmt.Errorf("%w: %s needs feed_url", ErrInvalidSource, s.Key)
		}
	case KindReddit:
		if s.Subreddit == "" {
			return fmt.Errorf("%w: %s needs subreddit", ErrInvalidSource, s.Key)
		}
		if s.Limit < 0 || s.Limit > 100 {
			return fmt.Errorf("%w: %s limit must be between 1 and 100", ErrInvalidSource, s.Key)
		}
		switch s.Listing {
		case "hot", "new", "top", "rising":
		default:
			return fmt.Errorf("%w: %s has unknown listing %q", ErrInvalidSource, s.Key, s.Listing)
		}
	default:
		return fmt.Errorf("%w: %s has unknown kind %q", ErrInvalidSource, s.Key, s.Kind)
	}
	return nil
}
