// Package draft holds the in-memory state of a recipe being authored.
package draft

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sebbas-5pg/ryori-web/internal/form"
	"github.com/sebbas-5pg/ryori-web/internal/recipe"
	"github.com/sebbas-5pg/ryori-web/internal/store"
)

// IngredientField selects which part of an ingredient row an edit
// targets.
type IngredientField string

const (
	IngredientName     IngredientField = "name"
	IngredientQuantity IngredientField = "quantity"
)

type Ingredient struct {
	Name     string
	Quantity string
}

type Step struct {
	Instructions string
}

// CategorySource supplies the selectable categories. Satisfied by
// *store.Client.
type CategorySource interface {
	ListCategories(ctx context.Context) ([]recipe.Category, error)
}

// Draft is the unsaved recipe for one authoring session. It lives
// only in memory and is discarded when the session ends, whether by
// successful submission or abandonment.
//
// Edits replace the ingredient and step slices rather than mutating
// them in place, so a caller holding an earlier slice never observes
// later edits.
//
// A draft is shared by every request goroutine carrying its session
// cookie. Callers serialize access with Lock and Unlock; none of the
// other methods lock on their own.
type Draft struct {
	mu sync.Mutex

	Title       string
	Description string
	PrepTime    int
	CookTime    int
	Image       *form.File
	Ingredients []Ingredient
	Steps       []Step

	selected map[int64]bool

	// Read-only category cache, populated at most once per session.
	Categories       []recipe.Category
	categoriesLoaded bool

	inFlight atomic.Bool
}

// New returns a draft with one blank ingredient and one blank step,
// matching the initial state of the authoring form.
func New() *Draft {
	return &Draft{
		Ingredients: []Ingredient{{}},
		Steps:       []Step{{}},
		selected:    make(map[int64]bool),
	}
}

// Lock takes the draft's lock. Handlers hold it for the whole
// post-back so two simultaneous requests on one session cannot
// interleave their edits.
func (d *Draft) Lock() { d.mu.Lock() }

// Unlock releases the draft's lock.
func (d *Draft) Unlock() { d.mu.Unlock() }

func coerceInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func (d *Draft) SetTitle(value string)       { d.Title = value }
func (d *Draft) SetDescription(value string) { d.Description = value }

// SetPrepTime coerces the input to an integer; non-numeric input
// becomes 0. No bounds are enforced.
func (d *Draft) SetPrepTime(value string) { d.PrepTime = coerceInt(value) }
func (d *Draft) SetCookTime(value string) { d.CookTime = coerceInt(value) }

// AttachImage replaces the draft's cover image.
func (d *Draft) AttachImage(file *form.File) { d.Image = file }

// EditIngredient updates one field of the ingredient at index. An
// out-of-range index is a silent no-op; the form only ever appends
// rows, so it cannot produce one.
func (d *Draft) EditIngredient(index int, field IngredientField, value string) {
	if index < 0 || index >= len(d.Ingredients) {
		return
	}
	next := slices.Clone(d.Ingredients)
	switch field {
	case IngredientName:
		next[index].Name = value
	case IngredientQuantity:
		next[index].Quantity = value
	}
	d.Ingredients = next
}

// AppendIngredient adds a blank ingredient row to the end of the
// list. Length is unbounded.
func (d *Draft) AppendIngredient() {
	d.Ingredients = append(slices.Clone(d.Ingredients), Ingredient{})
}

// EditStep updates the instructions of the step at index. An
// out-of-range index is a silent no-op.
func (d *Draft) EditStep(index int, instructions string) {
	if index < 0 || index >= len(d.Steps) {
		return
	}
	next := slices.Clone(d.Steps)
	next[index].Instructions = instructions
	d.Steps = next
}

// AppendStep adds a blank step to the end of the list.
func (d *Draft) AppendStep() {
	d.Steps = append(slices.Clone(d.Steps), Step{})
}

// ToggleCategory adds id to the selection if absent and removes it if
// present. Toggling twice restores the original selection.
func (d *Draft) ToggleCategory(id int64) {
	if d.selected[id] {
		delete(d.selected, id)
		return
	}
	d.selected[id] = true
}

func (d *Draft) IsSelected(id int64) bool {
	return d.selected[id]
}

// SelectedCategoryIDs returns the selected ids in ascending order.
func (d *Draft) SelectedCategoryIDs() []int64 {
	ids := make([]int64, 0, len(d.selected))
	for id := range d.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LoadCategories populates the category cache from the directory. It
// fetches at most once per session; on failure the cache stays empty
// and the error is returned for logging only. The author may still
// submit with no categories selected.
func (d *Draft) LoadCategories(ctx context.Context, src CategorySource) error {
	if d.categoriesLoaded {
		return nil
	}
	categories, err := src.ListCategories(ctx)
	if err != nil {
		return err
	}
	d.Categories = categories
	d.categoriesLoaded = true
	return nil
}

// Payload builds the phase-one creation payload. Steps are numbered
// 1..N by their position at this moment; categories are reduced to id
// references.
func (d *Draft) Payload() store.CreatePayload {
	steps := make([]store.StepPayload, len(d.Steps))
	for i, s := range d.Steps {
		steps[i] = store.StepPayload{
			StepNumber:   i + 1,
			Instructions: s.Instructions,
		}
	}

	ingredients := make([]store.IngredientPayload, len(d.Ingredients))
	for i, ing := range d.Ingredients {
		ingredients[i] = store.IngredientPayload{
			Name:     ing.Name,
			Quantity: ing.Quantity,
		}
	}

	ids := d.SelectedCategoryIDs()
	categories := make([]store.CategoryRef, len(ids))
	for i, id := range ids {
		categories[i] = store.CategoryRef{ID: id}
	}

	return store.CreatePayload{
		Title:       d.Title,
		Description: d.Description,
		PrepTime:    d.PrepTime,
		CookTime:    d.CookTime,
		Steps:       steps,
		Ingredients: ingredients,
		Categories:  categories,
	}
}

// TryBeginSubmit claims the draft's single submission slot. It
// returns false when a submission is already in flight.
func (d *Draft) TryBeginSubmit() bool {
	return d.inFlight.CompareAndSwap(false, true)
}

// EndSubmit releases the submission slot.
func (d *Draft) EndSubmit() {
	d.inFlight.Store(false)
}
