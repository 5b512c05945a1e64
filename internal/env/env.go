// Package env provides a structure for managing application-wide dependencies.
package env

import (
	"context"
	"log/slog"

	"github.com/sebbas-5pg/ryori-web/internal/config"
	"github.com/sebbas-5pg/ryori-web/internal/draft"
	"github.com/sebbas-5pg/ryori-web/internal/log"
	"github.com/sebbas-5pg/ryori-web/internal/recipe"
	"github.com/sebbas-5pg/ryori-web/internal/store"
	"github.com/sebbas-5pg/ryori-web/internal/submit"
)

type Env struct {
	Logger    *slog.Logger
	Store     *store.Client
	Images    *recipe.ImageResolver
	Drafts    *draft.Sessions
	Submitter *submit.Submitter
	Config    config.Config
}

func Null() *Env {
	return &Env{
		Logger: log.NullLogger(),
	}
}

type envKeyType struct{}

var envKey envKeyType

// WithCtx injects the environment into a context.
func WithCtx(ctx context.Context, environment *Env) context.Context {
	return context.WithValue(ctx, envKey, environment)
}

// FromCtx extracts the environment from a context. A context without
// one yields a null environment rather than a nil pointer.
func FromCtx(ctx context.Context) *Env {
	if e, ok := ctx.Value(envKey).(*Env); ok {
		return e
	}
	return Null()
}
