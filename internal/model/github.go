package model

import "time"

// Pull request display states.
const (
	PullRequestOpen   = "Open"
	PullRequestClosed = "Closed"
)

// GitHubUser holds public profile fields.
type GitHubUser struct {
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	Avatar    string  `json:"avatar"`
	Followers int     `json:"followers"`
	Following int     `json:"following"`
	Bio       *string `json:"bio"`
}

// Repository is a sampled repository.
type Repository struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	Stars       int     `json:"stars"`
	Forks       int     `json:"forks"`
	Issues      int     `json:"issues"`
	LastUpdated string  `json:"lastUpdated"`
}

// Commit is the most recent commit of one sampled repository.
type Commit struct {
	Repo    string    `json:"repo"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Hash    string    `json:"hash"`
}

// PullRequest is a pull request of a sampled repository.
type PullRequest struct {
	Title  string    `json:"title"`
	Repo   string    `json:"repo"`
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
}

// GitHub is the GitHub dashboard snapshot.
// Commits and PullRequests sample only the first repositories of the account.
type GitHub struct {
	User         GitHubUser    `json:"user"`
	Repositories []Repository  `json:"repositories"`
	Commits      []Commit      `json:"commits"`
	PullRequests []PullRequest `json:"pullRequests"`
}

// GitHubEvent is a public activity event.
type GitHubEvent struct {
	Type      string    `json:"type"`
	Repo      string    `json:"repo"`
	CreatedAt time.Time `json:"createdAt"`
}
