package dto

// DataResponse wraps a widget snapshot. Data is null when the upstream
// fetch failed; the request itself still succeeds.
type DataResponse[T any] struct {
	Data *T `json:"data"`
}
