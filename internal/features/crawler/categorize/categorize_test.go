package categorize

import "testing"

func TestCategorizeAndroidExample(t *testing.T) {
	c := New(DefaultRules())

	slug, score := c.Score("Building Android apps with Jetpack Compose and Kotlin", "", "")
	if slug != "android" || score != 4 {
		t.Errorf("Score = (%q, %d), want (android, 4)", slug, score)
	}

	if got := c.Categorize("Building Android apps with Jetpack Compose and Kotlin", "", "", "cross-platform"); got != "android" {
		t.Errorf("Categorize = %q, want android", got)
	}
}

func TestCategorizeFallback(t *testing.T) {
	c := New(DefaultRules())

	if got := c.Categorize("", "", "", "cross-platform"); got != "cross-platform" {
		t.Errorf("empty text: got %q, want cross-platform", got)
	}
	if got := c.Categorize("Quarterly earnings report", "nothing relevant", "", "flutter"); got != "flutter" {
		t.Errorf("no hits: got %q, want caller fallback flutter", got)
	}
}

func TestCategorizeTieGoesToEarlierRule(t *testing.T) {
	c := New(DefaultRules())

	// one android keyword, one ios keyword
	if got := c.Categorize("Gradle tips", "", "Xcode tips", "cross-platform"); got != "android" {
		t.Errorf("android/ios tie: got %q, want android", got)
	}
	// one ios keyword, one flutter keyword
	if got := c.Categorize("Xcode and Dart", "", "", "cross-platform"); got != "ios" {
		t.Errorf("ios/flutter tie: got %q, want ios", got)
	}
	// one ios keyword, one react-native keyword
	if got := c.Categorize("xcode vs react native", "", "", "cross-platform"); got != "ios" {
		t.Errorf("ios/react-native tie: got %q, want ios", got)
	}
}

func TestCategorizeHigherScoreWins(t *testing.T) {
	c := New(DefaultRules())

	got := c.Categorize("Flutter 3.22", "Dart macros and a new widget inspector", "also runs on Android", "cross-platform")
	if got != "flutter" {
		t.Errorf("got %q, want flutter", got)
	}
}

func TestCategorizePresenceNotFrequency(t *testing.T) {
	c := New(DefaultRules())

	// "swift" repeated many times still counts once; android has two distinct hits
	got := c.Categorize("swift swift swift swift", "kotlin on android", "", "cross-platform")
	if got != "android" {
		t.Errorf("got %q, want android", got)
	}
}

func TestCategorizeCaseInsensitiveAcrossFields(t *testing.T) {
	c := New(DefaultRules())

	if got := c.Categorize("", "", "Shipping a REACT NATIVE app with EXPO", "android"); got != "react-native" {
		t.Errorf("got %q, want react-native", got)
	}
}

func TestCategorizeSubstringFalsePositiveIsPreserved(t *testing.T) {
	c := New(DefaultRules())

	// "ios" matches inside "scenarios"
	if got := c.Categorize("Testing scenarios", "", "", "cross-platform"); got != "ios" {
		t.Errorf("got %q, want ios", got)
	}
}

func TestCustomRulesOrderDecidesTies(t *testing.T) {
	c := New([]Rule{
		{Slug: "ios", Keywords: []string{"Swift"}},
		{Slug: "android", Keywords: []string{"KOTLIN", "  "}},
	})

	if got := c.Categorize("swift and kotlin", "", "", "cross-platform"); got != "ios" {
		t.Errorf("got %q, want ios", got)
	}
	if rules := c.Rules(); len(rules[1].Keywords) != 1 || rules[1].Keywords[0] != "kotlin" {
		t.Errorf("keywords not normalised: %#v", rules[1].Keywords)
	}
}
