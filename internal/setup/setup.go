// Package setup is responsible for setting up components.
package setup

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/sebbas-5pg/ryori-web/internal/config"
	"github.com/sebbas-5pg/ryori-web/internal/recipe"
	"github.com/sebbas-5pg/ryori-web/internal/store"
)

// Store builds the recipe store client from the configured internal
// base address. Server-side fetches always use the internal address;
// the public one only ever reaches the browser.
func Store(conf config.Config, logger *slog.Logger) (*store.Client, error) {
	base, err := url.Parse(conf.API.InternalBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing internal api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("internal api url %q is not absolute", conf.API.InternalBaseURL)
	}

	return store.New(conf.API.InternalBaseURL, logger), nil
}

// Images builds the resolver that turns server-relative image paths
// into browser-loadable URLs.
func Images(conf config.Config) (*recipe.ImageResolver, error) {
	resolver, err := recipe.NewImageResolver(conf.Media.BaseURL, conf.Media.AllowedHosts)
	if err != nil {
		return nil, fmt.Errorf("building image resolver: %w", err)
	}
	return resolver, nil
}
