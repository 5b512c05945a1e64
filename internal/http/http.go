// Package http provides wrappers around the retryablehttp.Client
// for making HTTP requests against the recipe store.
package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

type HTTPDoer interface {
	Do(*retryablehttp.Request) (*http.Response, error)
}

type HTTP struct {
	*retryablehttp.Client
}

var _ HTTPDoer = (*retryablehttp.Client)(nil)

// DefaultConfig returns a retrying client suitable for read requests.
func DefaultConfig() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil
	return client
}

// NoRetryConfig returns a client that never retries. Recipe creation
// and image upload are not idempotent: a retried create that already
// committed would produce a duplicate recipe.
func NoRetryConfig() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 0
	return client
}

func New(client *retryablehttp.Client) *HTTP {
	return &HTTP{
		Client: client,
	}
}

func ExpectStatus2xx(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
