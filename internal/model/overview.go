package model

// Overview is the landing dashboard snapshot.
// Each slot degrades independently: a failed fetch leaves it nil or empty.
type Overview struct {
	Weather   *CurrentWeather `json:"weather"`
	Headlines []Headline      `json:"headlines"`
	Activity  []GitHubEvent   `json:"activity"`
}
