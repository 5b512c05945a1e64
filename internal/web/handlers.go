// Package web serves the catalog and authoring pages.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sebbas-5pg/ryori-web/internal/env"
	internalJson "github.com/sebbas-5pg/ryori-web/internal/json"
	"github.com/sebbas-5pg/ryori-web/internal/recipe"
	"github.com/sebbas-5pg/ryori-web/internal/store"
	"github.com/sebbas-5pg/ryori-web/internal/web/requestid"
)

type summaryView struct {
	ID          int64
	Title       string
	Description string
	ImageURL    string
}

type homeData struct {
	Recipes    []summaryView
	Categories []recipe.Category
	Selected   string
}

type detailData struct {
	Title       string
	Description string
	ImageURL    string
	PrepTime    int
	CookTime    int
	Ingredients []recipe.Ingredient
	Steps       []recipe.Step
	Categories  []recipe.Category
}

type errorData struct {
	RequestID string
}

// HandleHome renders the recipe listing, optionally filtered by a
// single category name. Recipes and categories are fetched from the
// store concurrently; a failed fetch degrades to an empty slice
// rather than an error page.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e := env.FromCtx(ctx)
	selected := r.URL.Query().Get("category")

	var recipes []recipe.Summary
	var categories []recipe.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs, err := e.Store.ListRecipes(gctx, selected)
		if err != nil {
			e.Logger.ErrorContext(gctx, "failed to list recipes", slog.Any("error", err))
			return nil
		}
		recipes = rs
		return nil
	})
	g.Go(func() error {
		cs, err := e.Store.ListCategories(gctx)
		if err != nil {
			e.Logger.ErrorContext(gctx, "failed to list categories", slog.Any("error", err))
			return nil
		}
		categories = cs
		return nil
	})
	_ = g.Wait()

	views := make([]summaryView, len(recipes))
	for i, rec := range recipes {
		views[i] = summaryView{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			ImageURL:    e.Images.Resolve(rec.ImagePath),
		}
	}

	render(w, r, http.StatusOK, "home.html", homeData{
		Recipes:    views,
		Categories: categories,
		Selected:   selected,
	})
}

// HandleRecipeDetail renders one recipe. A missing recipe is a
// distinct outcome from a store failure: the former gets the
// not-found page, the latter the error page.
func HandleRecipeDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e := env.FromCtx(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render(w, r, http.StatusNotFound, "notfound.html", nil)
		return
	}

	detail, err := e.Store.GetRecipe(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		render(w, r, http.StatusNotFound, "notfound.html", nil)
		return
	} else if err != nil {
		e.Logger.ErrorContext(ctx, "failed to fetch recipe",
			slog.Int64("recipe_id", id), slog.Any("error", err))
		render(w, r, http.StatusBadGateway, "error.html", errorData{RequestID: requestid.String(ctx)})
		return
	}

	render(w, r, http.StatusOK, "detail.html", detailData{
		Title:       detail.Title,
		Description: detail.Description,
		ImageURL:    e.Images.Resolve(detail.ImagePath),
		PrepTime:    detail.PrepTime,
		CookTime:    detail.CookTime,
		Ingredients: detail.Ingredients,
		Steps:       recipe.SortSteps(detail.Steps),
		Categories:  detail.Categories,
	})
}

func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	_ = internalJson.Encode(w, http.StatusOK, map[string]string{"status": "ok"})
}
