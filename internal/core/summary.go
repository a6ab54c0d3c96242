package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name    string  `json:"name"`
	Amount  Money   `json:"amount"`
	Percent float64 `json:"percent"`
}
