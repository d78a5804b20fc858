package models

// Tag is a free-form label shared across articles, unique by slug
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TagCreate is a processed tag ready for get-or-create
type TagCreate struct {
	Name string
	Slug string
}
