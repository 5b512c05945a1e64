package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sebbas-5pg/ryori-web/internal/draft"
	"github.com/sebbas-5pg/ryori-web/internal/env"
	"github.com/sebbas-5pg/ryori-web/internal/form"
	"github.com/sebbas-5pg/ryori-web/internal/submit"
)

const (
	draftCookie   = "ryori_draft"
	maxUploadSize = 20 << 20 // ~ 20 MB
)

type ingredientRow struct {
	Index    int
	Name     string
	Quantity string
}

type stepRow struct {
	Index        int
	Number       int
	Instructions string
}

type categoryOption struct {
	ID      int64
	Name    string
	Checked bool
}

type formData struct {
	Title         string
	Description   string
	PrepTime      int
	CookTime      int
	ImageAttached bool
	ImageMime     string
	Ingredients   []ingredientRow
	Steps         []stepRow
	Categories    []categoryOption
	Error         string
	CreatedID     int64
	Busy          bool
}

func formView(d *draft.Draft) formData {
	data := formData{
		Title:       d.Title,
		Description: d.Description,
		PrepTime:    d.PrepTime,
		CookTime:    d.CookTime,
	}
	if d.Image != nil {
		data.ImageAttached = true
		data.ImageMime = d.Image.MimeType
	}
	for i, ing := range d.Ingredients {
		data.Ingredients = append(data.Ingredients, ingredientRow{
			Index:    i,
			Name:     ing.Name,
			Quantity: ing.Quantity,
		})
	}
	for i, s := range d.Steps {
		data.Steps = append(data.Steps, stepRow{
			Index:        i,
			Number:       i + 1,
			Instructions: s.Instructions,
		})
	}
	for _, c := range d.Categories {
		data.Categories = append(data.Categories, categoryOption{
			ID:      c.ID,
			Name:    c.Name,
			Checked: d.IsSelected(c.ID),
		})
	}
	return data
}

func setDraftCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     draftCookie,
		Value:    id,
		Path:     "/admin/new",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearDraftCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     draftCookie,
		Value:    "",
		Path:     "/admin/new",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// draftFromCookie returns the draft for the request's session cookie,
// or starts a fresh session when the cookie is missing or stale.
func draftFromCookie(e *env.Env, w http.ResponseWriter, r *http.Request) *draft.Draft {
	if cookie, err := r.Cookie(draftCookie); err == nil {
		if d, ok := e.Drafts.Get(cookie.Value); ok {
			return d
		}
	}

	id, d := e.Drafts.Create()
	setDraftCookie(w, id)
	return d
}

// HandleNewRecipeForm renders the authoring form. Category load
// failures are logged only; the form still renders with an empty
// category list and submission stays possible.
func HandleNewRecipeForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e := env.FromCtx(ctx)

	d := draftFromCookie(e, w, r)
	d.Lock()
	defer d.Unlock()

	if err := d.LoadCategories(ctx, e.Store); err != nil {
		e.Logger.ErrorContext(ctx, "failed to load categories", slog.Any("error", err))
	}

	render(w, r, http.StatusOK, "form.html", formView(d))
}

// foldFormIntoDraft applies the posted field values to the draft.
// Every post-back carries the full form, so each mutation operation
// runs against the author's latest input.
func foldFormIntoDraft(d *draft.Draft, r *http.Request) error {
	d.SetTitle(r.FormValue("title"))
	d.SetDescription(r.FormValue("description"))
	d.SetPrepTime(r.FormValue("prep_time"))
	d.SetCookTime(r.FormValue("cook_time"))

	for i := range d.Ingredients {
		d.EditIngredient(i, draft.IngredientQuantity, r.FormValue(fmt.Sprintf("ingredient-quantity-%d", i)))
		d.EditIngredient(i, draft.IngredientName, r.FormValue(fmt.Sprintf("ingredient-name-%d", i)))
	}
	for i := range d.Steps {
		d.EditStep(i, r.FormValue(fmt.Sprintf("step-%d", i)))
	}

	// Reconcile checkbox state with the selection set: toggle every
	// id whose membership changed.
	posted := make(map[int64]bool)
	for _, v := range r.Form["category"] {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			posted[id] = true
		}
	}
	for _, id := range d.SelectedCategoryIDs() {
		if !posted[id] {
			d.ToggleCategory(id)
		}
	}
	for id := range posted {
		if !d.IsSelected(id) {
			d.ToggleCategory(id)
		}
	}

	cover, err := form.ReadCoverImage(r)
	if errors.Is(err, form.ErrNoImageUploaded) {
		return nil // keep whatever was attached before
	} else if err != nil {
		return err
	}
	d.AttachImage(cover)
	return nil
}

// HandleAuthoringAction is the form's post-back loop. The hidden
// action field selects the mutation; submit runs the two-phase
// creation workflow.
func HandleAuthoringAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e := env.FromCtx(ctx)

	d := draftFromCookie(e, w, r)
	// Held across fold and action: simultaneous post-backs on the same
	// session serialize instead of racing on the draft.
	d.Lock()
	defer d.Unlock()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		e.Logger.ErrorContext(ctx, "failed to parse multipart form", slog.Any("error", err))
		data := formView(d)
		data.Error = "The form could not be read. The image may be too large."
		render(w, r, http.StatusOK, "form.html", data)
		return
	}

	if err := foldFormIntoDraft(d, r); err != nil {
		if errors.Is(err, form.ErrUnsupportedMimeType) {
			data := formView(d)
			data.Error = "Only PNG and JPEG images are supported."
			render(w, r, http.StatusOK, "form.html", data)
			return
		}
		e.Logger.ErrorContext(ctx, "failed to read cover image", slog.Any("error", err))
		data := formView(d)
		data.Error = "The cover image could not be read."
		render(w, r, http.StatusOK, "form.html", data)
		return
	}

	switch r.FormValue("action") {
	case "add-ingredient":
		d.AppendIngredient()
		http.Redirect(w, r, "/admin/new", http.StatusSeeOther)
	case "add-step":
		d.AppendStep()
		http.Redirect(w, r, "/admin/new", http.StatusSeeOther)
	case "submit":
		submitDraft(w, r, d)
	default:
		http.Redirect(w, r, "/admin/new", http.StatusSeeOther)
	}
}

func submitDraft(w http.ResponseWriter, r *http.Request, d *draft.Draft) {
	ctx := r.Context()
	e := env.FromCtx(ctx)

	id, err := e.Submitter.Submit(ctx, d)
	if err != nil {
		data := formView(d)

		var validationErr *submit.ValidationError
		var submissionErr *submit.SubmissionError
		switch {
		case errors.As(err, &validationErr):
			data.Error = "Please attach a cover image."
		case errors.Is(err, submit.ErrSubmitInFlight):
			data.Busy = true
			data.Error = "A submission is already running."
		case errors.As(err, &submissionErr):
			data.Error = "There was an error creating the recipe. Please try again."
			data.CreatedID = submissionErr.CreatedID
		default:
			e.Logger.ErrorContext(ctx, "unexpected submission error", slog.Any("error", err))
			data.Error = "There was an error creating the recipe. Please try again."
		}

		render(w, r, http.StatusOK, "form.html", data)
		return
	}

	// Hard transition: the draft is discarded, not cached for retry.
	if cookie, cerr := r.Cookie(draftCookie); cerr == nil {
		e.Drafts.Destroy(cookie.Value)
	}
	clearDraftCookie(w)
	http.Redirect(w, r, fmt.Sprintf("/recipes/%d", id), http.StatusSeeOther)
}
