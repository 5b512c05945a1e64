package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sebbas-5pg/ryori-web/internal/config"
	"github.com/sebbas-5pg/ryori-web/internal/draft"
	"github.com/sebbas-5pg/ryori-web/internal/env"
	internalHttp "github.com/sebbas-5pg/ryori-web/internal/http"
	"github.com/sebbas-5pg/ryori-web/internal/log"
	"github.com/sebbas-5pg/ryori-web/internal/recipe"
	"github.com/sebbas-5pg/ryori-web/internal/store"
	"github.com/sebbas-5pg/ryori-web/internal/submit"
)

// newTestEnv wires a full environment against a fake recipe store.
func newTestEnv(t *testing.T, storeHandler http.Handler) *env.Env {
	t.Helper()

	storeServer := httptest.NewServer(storeHandler)
	t.Cleanup(storeServer.Close)

	logger := log.NullLogger()
	// No-retry transports keep outage cases fast.
	client := store.NewWithTransports(storeServer.URL, logger,
		internalHttp.New(internalHttp.NoRetryConfig()),
		internalHttp.New(internalHttp.NoRetryConfig()))

	images, err := recipe.NewImageResolver(storeServer.URL, nil)
	if err != nil {
		t.Fatalf("building image resolver: %v", err)
	}

	return &env.Env{
		Logger:    logger,
		Store:     client,
		Images:    images,
		Drafts:    draft.NewSessions(draft.DefaultTTL),
		Submitter: submit.New(client, logger),
		Config:    config.Config{Env: config.EnvDev, ListenAddr: ":0"},
	}
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandleHome(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		handler      http.HandlerFunc
		wantContains []string
		wantMissing  []string
	}{
		{
			name:   "list with recipes and categories",
			target: "/",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				switch r.URL.Path {
				case "/recipes":
					_, _ = w.Write([]byte(`[{"ID":1,"title":"Flan","description":"Sweet","image_path":"/uploads/a.png"}]`))
				case "/categories":
					_, _ = w.Write([]byte(`[{"ID":1,"Name":"Postres"},{"ID":2,"Name":"Entrantes"}]`))
				default:
					http.NotFound(w, r)
				}
			},
			wantContains: []string{"Flan", "Postres", "Entrantes", "/recipes/1", "/uploads/a.png"},
			wantMissing:  []string{"No recipes found"},
		},
		{
			name:   "empty collection renders empty state",
			target: "/",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			},
			wantContains: []string{"No recipes found"},
		},
		{
			name:   "unknown category filter renders empty state, not an error",
			target: "/?category=Desconocida",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if r.URL.Path == "/recipes" && r.URL.Query().Get("category") != "Desconocida" {
					http.Error(w, "unexpected filter", http.StatusBadRequest)
					return
				}
				_, _ = w.Write([]byte(`[]`))
			},
			wantContains: []string{"No recipes found", "in this category"},
		},
		{
			name:   "store outage degrades to empty list",
			target: "/",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantContains: []string{"No recipes found"},
		},
		{
			name:   "summary without image renders placeholder",
			target: "/",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				switch r.URL.Path {
				case "/recipes":
					_, _ = w.Write([]byte(`[{"ID":3,"title":"Paella","description":"Rice"}]`))
				default:
					_, _ = w.Write([]byte(`[]`))
				}
			},
			wantContains: []string{"Paella", "No image"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, tt.handler)
			router := Router(e)

			w := get(t, router, tt.target)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			body := w.Body.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(body, want) {
					t.Errorf("expected body to contain %q", want)
				}
			}
			for _, missing := range tt.wantMissing {
				if strings.Contains(body, missing) {
					t.Errorf("expected body to not contain %q", missing)
				}
			}
		})
	}
}

func TestHandleRecipeDetail(t *testing.T) {
	detailJSON := `{"ID":7,"title":"Flan","description":"Sweet","prep_time":10,"cook_time":45,
		"image_path":"/uploads/flan.png",
		"ingredients":[{"ID":1,"name":"eggs","quantity":"4"}],
		"steps":[{"ID":2,"step_number":2,"instructions":"bake"},{"ID":1,"step_number":1,"instructions":"mix"}],
		"categories":[{"ID":1,"Name":"Postres"}]}`

	t.Run("renders detail with steps in sequence order", func(t *testing.T) {
		e := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/recipes/7" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(detailJSON))
		}))
		router := Router(e)

		w := get(t, router, "/recipes/7")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		body := w.Body.String()
		for _, want := range []string{"Flan", "Postres", "4 eggs", "10", "45"} {
			if !strings.Contains(body, want) {
				t.Errorf("expected body to contain %q", want)
			}
		}
		if mix, bake := strings.Index(body, "mix"), strings.Index(body, "bake"); mix == -1 || bake == -1 || mix > bake {
			t.Errorf("expected steps sorted by sequence number, got mix@%d bake@%d", mix, bake)
		}
	})

	t.Run("missing recipe renders not-found page", func(t *testing.T) {
		e := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Recipe not found", http.StatusNotFound)
		}))
		router := Router(e)

		w := get(t, router, "/recipes/99")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Recipe not found") {
			t.Error("expected not-found page")
		}
	})

	t.Run("store outage renders error page, not not-found", func(t *testing.T) {
		e := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		router := Router(e)

		w := get(t, router, "/recipes/7")
		if w.Code != http.StatusBadGateway {
			t.Fatalf("expected status 502, got %d", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "Something went wrong") {
			t.Error("expected error page")
		}
		if strings.Contains(body, "Recipe not found") {
			t.Error("outage must not masquerade as not-found")
		}
	})

	t.Run("non-numeric id renders not-found page", func(t *testing.T) {
		e := newTestEnv(t, http.NotFoundHandler())
		router := Router(e)

		w := get(t, router, "/recipes/flan")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})
}

func TestHandleHealthz(t *testing.T) {
	e := newTestEnv(t, http.NotFoundHandler())
	router := Router(e)

	w := get(t, router, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("unexpected body %s", body)
	}
}
