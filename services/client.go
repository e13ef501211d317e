// Package services implements the Galaxy API operations used by the demo,
// grouped by resource: histories, tools and datasets.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ClientInterface defines the methods needed from GalaxyClient
type ClientInterface interface {
	NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error)
	Do(req *http.Request) (*http.Response, error)
	Stream(req *http.Request) (*http.Response, error)
	CheckResponse(resp *http.Response, accepted ...int) error
	GetBaseURL() string
	GetAPIKey() string
}

// getJSON issues an authenticated GET and decodes a 200 response into out
func getJSON(ctx context.Context, client ClientInterface, path string, out interface{}) error {
	req, err := client.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := client.CheckResponse(resp, http.StatusOK); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
