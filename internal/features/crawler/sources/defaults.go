package sources

// Default returns the built-in registry of official blogs and subreddits
func Default() *Registry {
	r, err := NewRegistry(defaultSpecs(), nil)
	if err != nil {
		panic("sources: invalid built-in registry: " + err.Error())
	}
	return r
}

func defaultSpecs() []Spec {
	return []Spec{
		{
			Key: "android", Name: "Android Developers Blog", Kind: KindFeed,
			SiteURL:         "https://android-developers.googleblog.com/",
			FeedURL:         "https://android-developers.googleblog.com/feeds/posts/default",
			DefaultCategory: "android",
		},
		{
			Key: "ios", Name: "Apple Developer News", Kind: KindFeed,
			SiteURL:         "https://developer.apple.com/news/",
			FeedURL:         "https://developer.apple.com/news/rss/news.rss",
			DefaultCategory: "ios",
		},
		{
			Key: "react-native", Name: "React Native Blog", Kind: KindFeed,
			SiteURL:         "https://reactnative.dev/blog",
			FeedURL:         "https://reactnative.dev/blog/rss.xml",
			DefaultCategory: "react-native",
		},
		{
			Key: "flutter", Name: "Flutter Blog", Kind: KindFeed,
			SiteURL:         "https://medium.com/flutter",
			FeedURL:         "https://medium.com/feed/flutter",
			DefaultCategory: "flutter",
		},
		{
			Key: "kotlin", Name: "Kotlin Blog", Kind: KindFeed,
			SiteURL:         "https://blog.jetbrains.com/kotlin/",
			FeedURL:         "https://blog.jetbrains.com/kotlin/feed/",
			DefaultCategory: "android",
		},
		{
			Key: "swift", Name: "Swift.org Blog", Kind: KindFeed,
			SiteURL:         "https://www.swift.org/blog/",
			FeedURL:         "https://www.swift.org/blog/rss.xml",
			DefaultCategory: "ios",
		},
		{Key: "reddit-androiddev", Kind: KindReddit, Subreddit: "androiddev", DefaultCategory: "android"},
		{Key: "reddit-iosprogramming", Kind: KindReddit, Subreddit: "iOSProgramming", DefaultCategory: "ios"},
		{Key: "reddit-reactnative", Kind: KindReddit, Subreddit: "reactnative", DefaultCategory: "react-native"},
		{Key: "reddit-flutterdev", Kind: KindReddit, Subreddit: "FlutterDev", DefaultCategory: "flutter"},
	}
}
