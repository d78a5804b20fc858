package migrations

import (
	"mobiledev-news/internal/core"
)

// Migration002SeedCategories inserts the five platform categories the
// categorizer can produce
var Migration002SeedCategories = core.Migration{
	Version:     2,
	Name:        "seed_categories",
	Description: "Seed the android, ios, react-native, flutter and cross-platform categories",
	UpSQL: `
		INSERT INTO categories (name, slug, description) VALUES
			('Android', 'android', 'Android development news and tutorials'),
			('iOS', 'ios', 'iOS development news and tutorials'),
			('React Native', 'react-native', 'React Native development news and tutorials'),
			('Flutter', 'flutter', 'Flutter development news and tutorials'),
			('Cross-Platform', 'cross-platform', 'Cross-platform mobile development news')
		ON CONFLICT(slug) DO NOTHING;
	`,
	DownSQL: `
		DELETE FROM categories
		WHERE slug IN ('android', 'ios', 'react-native', 'flutter', 'cross-platform')
		  AND id NOT IN (SELECT category_id FROM articles WHERE category_id IS NOT NULL);
	`,
}
