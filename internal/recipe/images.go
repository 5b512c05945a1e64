package recipe

import (
	"fmt"
	"net/url"
	"strings"
)

// ImageResolver turns the server-relative image paths embedded in
// recipe records into absolute URLs the browser can load. Absolute
// image URLs are passed through only when their host is allow-listed.
type ImageResolver struct {
	base    *url.URL
	allowed map[string]bool
}

func NewImageResolver(baseURL string, allowedHosts []string) (*ImageResolver, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing media base url: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("media base url %q has no host", baseURL)
	}

	allowed := make(map[string]bool, len(allowedHosts)+1)
	allowed[strings.ToLower(base.Hostname())] = true
	for _, h := range allowedHosts {
		allowed[strings.ToLower(h)] = true
	}

	return &ImageResolver{base: base, allowed: allowed}, nil
}

// Resolve returns the absolute URL for imagePath, or the empty string
// when there is no image or its host is not allowed. Callers render a
// placeholder for the empty string.
func (r *ImageResolver) Resolve(imagePath string) string {
	if imagePath == "" {
		return ""
	}

	ref, err := url.Parse(imagePath)
	if err != nil {
		return ""
	}

	resolved := r.base.ResolveReference(ref)
	if !r.allowed[strings.ToLower(resolved.Hostname())] {
		return ""
	}
	return resolved.String()
}
