package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sebbas-5pg/ryori-web/internal/env"
)

const shutdownTimeout = 10 * time.Second

func addRoutes(router *chi.Mux) {
	router.Get("/healthz", HandleHealthz)
	router.Get("/", HandleHome)
	router.Get("/recipes/{id}", HandleRecipeDetail)
	router.Get("/admin/new", HandleNewRecipeForm)
	router.Post("/admin/new", HandleAuthoringAction)
}

// Router assembles the page routes with the middleware chain.
func Router(e *env.Env) http.Handler {
	router := chi.NewRouter()
	router.Use(AddRequestID)
	router.Use(LogRequest(e.Logger))
	router.Use(InjectEnv(e))

	addRoutes(router)
	return router
}

// Start serves the pages until ctx is cancelled, then shuts the
// server down gracefully.
func Start(ctx context.Context, e *env.Env) error {
	server := &http.Server{
		Addr:    e.Config.ListenAddr,
		Handler: Router(e),
	}

	errCh := make(chan error, 1)
	go func() {
		e.Logger.Info("listening", "addr", e.Config.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
