// Package store is the client for the remote recipe store.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/sebbas-5pg/ryori-web/internal/form"
	internalHttp "github.com/sebbas-5pg/ryori-web/internal/http"
	internalJson "github.com/sebbas-5pg/ryori-web/internal/json"
	"github.com/sebbas-5pg/ryori-web/internal/recipe"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrNotFound reports that the store has no record for the requested
// recipe. It is distinct from transport failures so presenters can
// tell a missing recipe apart from an outage.
var ErrNotFound = errors.New("recipe not found")

// Client talks to the recipe store's HTTP API. Reads go through a
// retrying client; creation and upload go through a non-retrying one
// because neither endpoint is idempotent.
type Client struct {
	baseURL string
	reads   *internalHttp.HTTP
	writes  *internalHttp.HTTP
	logger  *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Client {
	return NewWithTransports(baseURL, logger,
		internalHttp.New(internalHttp.DefaultConfig()),
		internalHttp.New(internalHttp.NoRetryConfig()))
}

// NewWithTransports builds a client over explicitly constructed
// transports, one for reads and one for mutations.
func NewWithTransports(baseURL string, logger *slog.Logger, reads, writes *internalHttp.HTTP) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		reads:   reads,
		writes:  writes,
		logger:  logger,
	}
}

// StepPayload carries one step of a recipe creation request. The
// client always assigns StepNumber; the store never infers order.
type StepPayload struct {
	StepNumber   int    `json:"step_number"`
	Instructions string `json:"instructions"`
}

type IngredientPayload struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// CategoryRef links a recipe to a category by identifier only.
type CategoryRef struct {
	ID int64 `json:"ID"`
}

type CreatePayload struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	PrepTime    int                 `json:"prep_time"`
	CookTime    int                 `json:"cook_time"`
	Steps       []StepPayload       `json:"steps"`
	Ingredients []IngredientPayload `json:"ingredients"`
	Categories  []CategoryRef       `json:"categories"`
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.reads.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if err := internalHttp.ExpectStatus2xx(resp); err != nil {
		return err
	}

	return internalJson.Decode(dst, resp.Body)
}

// ListRecipes fetches recipe summaries, optionally filtered to a
// single category by exact name. An empty result is a valid state,
// not an error.
func (c *Client) ListRecipes(ctx context.Context, category string) ([]recipe.Summary, error) {
	path := "/recipes"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var recipes []recipe.Summary
	if err := c.get(ctx, path, &recipes); err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe fetches one recipe with its ingredients, steps and
// categories. Returns ErrNotFound when the store reports 404.
func (c *Client) GetRecipe(ctx context.Context, id int64) (*recipe.Detail, error) {
	var detail recipe.Detail
	if err := c.get(ctx, fmt.Sprintf("/recipes/%d", id), &detail); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching recipe %d: %w", id, err)
	}
	return &detail, nil
}

// ListCategories fetches the category directory.
func (c *Client) ListCategories(ctx context.Context) ([]recipe.Category, error) {
	var categories []recipe.Category
	if err := c.get(ctx, "/categories", &categories); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// CreateRecipe sends the structured recipe data (phase one of the
// creation workflow) and returns the identifier the store assigned.
func (c *Client) CreateRecipe(ctx context.Context, payload CreatePayload) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshaling create payload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recipes", body)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.DebugContext(ctx, "creating recipe", slog.Int("steps", len(payload.Steps)),
		slog.Int("ingredients", len(payload.Ingredients)))
	resp, err := c.writes.Do(req)
	if err != nil {
		return 0, fmt.Errorf("creating recipe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := internalHttp.ExpectStatus2xx(resp); err != nil {
		return 0, fmt.Errorf("creating recipe: %w", err)
	}

	var created struct {
		ID int64 `json:"ID"`
	}
	if err := internalJson.Decode(&created, resp.Body); err != nil {
		return 0, fmt.Errorf("decoding create response: %w", err)
	}
	if created.ID == 0 {
		return 0, errors.New("store assigned no recipe id")
	}
	return created.ID, nil
}

// UploadCoverImage attaches the cover image to an already created
// recipe (phase two of the creation workflow).
func (c *Client) UploadCoverImage(ctx context.Context, id int64, file *form.File) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "cover"+file.Suffix)
	if err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return fmt.Errorf("writing multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/recipes/%d/upload", c.baseURL, id), body.Bytes())
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.DebugContext(ctx, "uploading cover image",
		slog.Int64("recipe_id", id), slog.Int64("bytes", file.Size))
	resp, err := c.writes.Do(req)
	if err != nil {
		return fmt.Errorf("uploading cover image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := internalHttp.ExpectStatus2xx(resp); err != nil {
		return fmt.Errorf("uploading cover image: %w", err)
	}
	return nil
}
