package model

import "time"

// CategoryAll is the category assigned when no filter is active.
const CategoryAll = "All"

// NewsCategories lists the filters offered to clients.
var NewsCategories = []string{
	"Technology",
	"Business",
	"Politics",
	"Health",
	"Science",
	"Sports",
	"Entertainment",
	"Environment",
}

// Article is a normalized news item.
// Category is the filter active at fetch time, not a property of the source article.
type Article struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	Image       *string   `json:"image"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"publishedAt"`
	URL         string    `json:"url"`
}

// News is the news dashboard snapshot.
type News struct {
	TopStories []Article `json:"topStories"`
	RecentNews []Article `json:"recentNews"`
	Categories []string  `json:"categories"`
}

// Headline is a compact top-headline entry for the overview.
type Headline struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}
