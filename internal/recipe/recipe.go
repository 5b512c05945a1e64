// Package recipe contains the view models served by the recipe store.
package recipe

import (
	"slices"
	"time"
)

// Summary is one entry of the recipe listing. Field casing follows the
// store's wire format, which exposes its record metadata verbatim.
type Summary struct {
	ID          int64      `json:"ID"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImagePath   string     `json:"image_path,omitempty"`
	CreatedAt   time.Time  `json:"CreatedAt"`
	UpdatedAt   time.Time  `json:"UpdatedAt"`
	DeletedAt   *time.Time `json:"DeletedAt"`
}

type Ingredient struct {
	ID       int64  `json:"ID"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type Step struct {
	ID           int64  `json:"ID"`
	StepNumber   int    `json:"step_number"`
	Instructions string `json:"instructions"`
}

type Category struct {
	ID   int64  `json:"ID"`
	Name string `json:"Name"`
}

type Detail struct {
	ID          int64        `json:"ID"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	PrepTime    int          `json:"prep_time"`
	CookTime    int          `json:"cook_time"`
	ImagePath   string       `json:"image_path,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
	Categories  []Category   `json:"categories"`
}

// SortSteps returns the steps ordered by their stored sequence number,
// ascending. The store does not guarantee storage order, so display
// order is established here. The input slice is left untouched.
func SortSteps(steps []Step) []Step {
	sorted := slices.Clone(steps)
	slices.SortStableFunc(sorted, func(a, b Step) int {
		return a.StepNumber - b.StepNumber
	})
	return sorted
}
