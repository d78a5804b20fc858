package tags

import (
	"fmt"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"React Native", "react-native"},
		{"react-native", "react-native"},
		{"react_native", "react-native"},
		{"  SwiftUI  ", "swiftui"},
		{"Jetpack Compose!", "jetpack-compose"},
		{"Café Résumé", "cafe-resume"},
		{"C++ / Kotlin", "c-kotlin"},
		{"--Flutter--", "flutter"},
		{"日本語", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugifyBoundedLength(t *testing.T) {
	got := Slugify(strings.Repeat("ab ", 80))
	if len(got) > MaxTagLength {
		t.Errorf("slug length %d exceeds %d", len(got), MaxTagLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a hyphen", got)
	}
}

func TestProcessDedupAndCap(t *testing.T) {
	raw := []string{"React Native", "react-native", "Android", "iOS"}
	for i := 1; i <= 11; i++ {
		raw = append(raw, fmt.Sprintf("tag%d", i))
	}

	got := Process(raw)

	if len(got) != MaxTagsPerArticle {
		t.Fatalf("got %d tags, want %d", len(got), MaxTagsPerArticle)
	}
	if got[0].Name != "React Native" || got[0].Slug != "react-native" {
		t.Errorf("first tag = %+v, want first spelling of react-native", got[0])
	}
	for _, tag := range got[1:] {
		if tag.Slug == "react-native" {
			t.Errorf("react-native appears twice")
		}
	}
	wantOrder := []string{"react-native", "android", "ios", "tag1", "tag2", "tag3", "tag4", "tag5", "tag6", "tag7"}
	for i, slug := range wantOrder {
		if got[i].Slug != slug {
			t.Errorf("tag %d slug = %q, want %q", i, got[i].Slug, slug)
		}
	}
}

func TestProcessDropsEmptyAndOversized(t *testing.T) {
	raw := []string{"", "   ", strings.Repeat("x", MaxTagLength+1), strings.Repeat("y", MaxTagLength), "!!!", "Kotlin"}

	got := Process(raw)

	if len(got) != 2 {
		t.Fatalf("got %d tags (%+v), want 2", len(got), got)
	}
	if got[0].Slug != strings.Repeat("y", MaxTagLength) {
		t.Errorf("100-character tag should survive, got %q", got[0].Slug)
	}
	if got[1].Slug != "kotlin" {
		t.Errorf("got %q, want kotlin", got[1].Slug)
	}
}

func TestProcessNil(t *testing.T) {
	if got := Process(nil); len(got) != 0 {
		t.Errorf("Process(nil) = %v, want empty", got)
	}
}
