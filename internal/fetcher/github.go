package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pulsedash/pulsedash/internal/model"
)

const (
	sampledRepos    = 5
	listedRepos     = 4
	shortHashLength = 7
	eventsCount     = 3
)

// GitHubFetcher reads a public profile from the GitHub REST API.
type GitHubFetcher struct {
	up       *upstream
	baseURL  string
	username string
	token    string
}

// NewGitHubFetcher creates a GitHubFetcher for username.
// token is optional and only raises the rate limit.
func NewGitHubFetcher(baseURL, username, token string, opts Options) *GitHubFetcher {
	return &GitHubFetcher{
		up:       newUpstream(ProviderGitHub, opts),
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		token:    token,
	}
}

type githubUser struct {
	Login     string  `json:"login"`
	Name      *string `json:"name"`
	AvatarURL string  `json:"avatar_url"`
	Followers int     `json:"followers"`
	Following int     `json:"following"`
	Bio       *string `json:"bio"`
}

type githubRepo struct {
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type githubCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type githubPull struct {
	Title     string    `json:"title"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

type githubEvent struct {
	Type string `json:"type"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *GitHubFetcher) header() http.Header {
	h := http.Header{}
	if f.token != "" {
		h.Set("Authorization", "token "+f.token)
	}
	return h
}

func (f *GitHubFetcher) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return f.baseURL + "/" + strings.Join(escaped, "/")
}

// Fetch returns the profile snapshot, or nil when the user or the
// repository list cannot be read.
func (f *GitHubFetcher) Fetch(ctx context.Context) *model.GitHub {
	if f.username == "" {
		f.up.drop(ctx, "user", ErrNotConfigured)
		return nil
	}

	var (
		user  githubUser
		repos []githubRepo
	)

	// The profile and repository list are independent; either failing voids the snapshot.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.up.getJSON(gctx, "user", f.endpoint("users", f.username), f.header(), &user)
	})
	g.Go(func() error {
		return f.up.getJSON(gctx, "repos", f.endpoint("users", f.username, "repos"), f.header(), &repos)
	})
	if err := g.Wait(); err != nil {
		f.up.drop(ctx, "profile", err)
		return nil
	}

	sampled := repos
	if len(sampled) > sampledRepos {
		sampled = sampled[:sampledRepos]
	}

	var (
		commits []*model.Commit
		pulls   []*[]model.PullRequest
	)
	var batches errgroup.Group
	batches.Go(func() error {
		commits = fanOut(ctx, sampled, f.latestCommit)
		return nil
	})
	batches.Go(func() error {
		pulls = fanOut(ctx, sampled, f.pullRequests)
		return nil
	})
	_ = batches.Wait()

	snapshot := &model.GitHub{
		User: model.GitHubUser{
			Username:  user.Login,
			Name:      deref(user.Name),
			Avatar:    user.AvatarURL,
			Followers: user.Followers,
			Following: user.Following,
			Bio:       user.Bio,
		},
		Repositories: buildRepositories(repos),
		Commits:      compact(commits),
		PullRequests: []model.PullRequest{},
	}
	for _, prs := range pulls {
		if prs != nil {
			snapshot.PullRequests = append(snapshot.PullRequests, *prs...)
		}
	}

	return snapshot
}

func buildRepositories(repos []githubRepo) []model.Repository {
	if len(repos) > listedRepos {
		repos = repos[:listedRepos]
	}
	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, model.Repository{
			Name:        r.Name,
			Description: r.Description,
			Language:    r.Language,
			Stars:       r.StargazersCount,
			Forks:       r.ForksCount,
			Issues:      r.OpenIssuesCount,
			LastUpdated: r.UpdatedAt.UTC().Format("2006-01-02"),
		})
	}
	return out
}

// latestCommit returns the newest commit of repo; a repository without
// commits counts as a dropped unit.
func (f *GitHubFetcher) latestCommit(ctx context.Context, repo githubRepo) *model.Commit {
	unit := "commits:" + repo.Name

	var commits []githubCommit
	if err := f.up.getJSON(ctx, unit, f.endpoint("repos", f.username, repo.Name, "commits"), f.header(), &commits); err != nil {
		f.up.drop(ctx, unit, err)
		return nil
	}
	if len(commits) == 0 {
		return nil
	}

	c := commits[0]
	hash := c.SHA
	if len(hash) > shortHashLength {
		hash = hash[:shortHashLength]
	}
	return &model.Commit{
		Repo:    repo.Name,
		Message: c.Commit.Message,
		Date:    c.Commit.Author.Date,
		Hash:    hash,
	}
}

func (f *GitHubFetcher) pullRequests(ctx context.Context, repo githubRepo) *[]model.PullRequest {
	unit := "pulls:" + repo.Name

	var pulls []githubPull
	if err := f.up.getJSON(ctx, unit, f.endpoint("repos", f.username, repo.Name, "pulls"), f.header(), &pulls); err != nil {
		f.up.drop(ctx, unit, err)
		return nil
	}

	out := make([]model.PullRequest, 0, len(pulls))
	for _, p := range pulls {
		status := model.PullRequestClosed
		if p.State == "open" {
			status = model.PullRequestOpen
		}
		out = append(out, model.PullRequest{
			Title:  p.Title,
			Repo:   repo.Name,
			Status: status,
			Date:   p.CreatedAt,
		})
	}
	return &out
}

// Events returns the most recent public events for the overview.
// A failed fetch yields an empty list.
func (f *GitHubFetcher) Events(ctx context.Context) []model.GitHubEvent {
	const unit = "events"

	if f.username == "" {
		f.up.drop(ctx, unit, ErrNotConfigured)
		return []model.GitHubEvent{}
	}

	var events []githubEvent
	if err := f.up.getJSON(ctx, unit, f.endpoint("users", f.username, "events"), f.header(), &events); err != nil {
		f.up.drop(ctx, unit, err)
		return []model.GitHubEvent{}
	}

	if len(events) > eventsCount {
		events = events[:eventsCount]
	}
	out := make([]model.GitHubEvent, 0, len(events))
	for _, e := range events {
		out = append(out, model.GitHubEvent{Type: e.Type, Repo: e.Repo.Name, CreatedAt: e.CreatedAt})
	}
	return out
}
