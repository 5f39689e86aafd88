package fetcher

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/pulsedash/pulsedash/internal/model"
)

const (
	defaultNewsQuery = "Apple"
	topStoriesCount  = 3
	recentNewsLimit  = 14
	headlinesCount   = 6
	headlinesCountry = "us"
	newsStatusOK     = "ok"
)

// NewsFetcher reads articles from newsapi.org.
type NewsFetcher struct {
	up       *upstream
	baseURL  string
	apiKey   string
	lookback time.Duration
	now      func() time.Time
}

// NewNewsFetcher creates a NewsFetcher.
// A positive lookback restricts results to articles newer than now minus lookback.
func NewNewsFetcher(baseURL, apiKey string, lookback time.Duration, opts Options) *NewsFetcher {
	return &NewsFetcher{
		up:       newUpstream(ProviderNews, opts),
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		lookback: lookback,
		now:      time.Now,
	}
}

type newsArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	URLToImage  *string   `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
}

type newsResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Articles []newsArticle `json:"articles"`
}

// Fetch returns the news snapshot for category, or nil.
// An empty category searches the default query and tags items "All".
func (f *NewsFetcher) Fetch(ctx context.Context, category string) *model.News {
	const unit = "everything"

	if f.apiKey == "" {
		f.up.drop(ctx, unit, ErrNotConfigured)
		return nil
	}

	query := category
	if query == "" {
		query = defaultNewsQuery
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("sortBy", "popularity")
	if f.lookback > 0 {
		q.Set("from", f.now().Add(-f.lookback).UTC().Format("2006-01-02"))
	}
	q.Set("apiKey", f.apiKey)

	resp, ok := f.get(ctx, unit, f.baseURL+"/everything?"+q.Encode())
	if !ok {
		return nil
	}

	return buildNews(resp.Articles, category)
}

// Headlines returns the first top headlines for the overview.
// A failed fetch yields an empty list.
func (f *NewsFetcher) Headlines(ctx context.Context) []model.Headline {
	const unit = "top-headlines"

	if f.apiKey == "" {
		f.up.drop(ctx, unit, ErrNotConfigured)
		return []model.Headline{}
	}

	q := url.Values{}
	q.Set("country", headlinesCountry)
	q.Set("apiKey", f.apiKey)

	resp, ok := f.get(ctx, unit, f.baseURL+"/top-headlines?"+q.Encode())
	if !ok {
		return []model.Headline{}
	}

	articles := resp.Articles
	if len(articles) > headlinesCount {
		articles = articles[:headlinesCount]
	}
	headlines := make([]model.Headline, 0, len(articles))
	for _, a := range articles {
		headlines = append(headlines, model.Headline{Title: a.Title, Source: a.Source.Name})
	}
	return headlines
}

func (f *NewsFetcher) get(ctx context.Context, unit, endpoint string) (*newsResponse, bool) {
	var resp newsResponse
	if err := f.up.getJSON(ctx, unit, endpoint, nil, &resp); err != nil {
		f.up.drop(ctx, unit, err)
		return nil, false
	}
	if resp.Status != "" && resp.Status != newsStatusOK {
		f.up.drop(ctx, unit, &UpstreamError{
			Provider: ProviderNews,
			Unit:     unit,
			Status:   200,
			Err:      malformed("status %q: %s", resp.Status, resp.Message),
		})
		return nil, false
	}
	return &resp, true
}

// buildNews splits articles into top stories (first three) and recent news
// (the next eleven). IDs are 1-based positions in the original list.
func buildNews(articles []newsArticle, category string) *model.News {
	tag := category
	if tag == "" {
		tag = model.CategoryAll
	}

	news := &model.News{
		TopStories: []model.Article{},
		RecentNews: []model.Article{},
		Categories: append([]string(nil), model.NewsCategories...),
	}

	for i, a := range articles {
		if i >= recentNewsLimit {
			break
		}
		article := model.Article{
			ID:          i + 1,
			Title:       a.Title,
			Summary:     deref(a.Description),
			Source:      a.Source.Name,
			Image:       a.URLToImage,
			Category:    tag,
			PublishedAt: a.PublishedAt,
			URL:         a.URL,
		}
		if i < topStoriesCount {
			news.TopStories = append(news.TopStories, article)
		} else {
			news.RecentNews = append(news.RecentNews, article)
		}
	}

	return news
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
