// Package health asks a taskflow API server for its status and version.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	UserAgent = "taskflow-cli"
	timeout   = 10 * time.Second
)

// Status is the server's /health response
type Status struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthURL derives the server's /health address from the API base URL.
// The API lives under /api/ while the health check sits at the root.
func HealthURL(apiBaseURL string) (string, error) {
	u, err := url.Parse(apiBaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid API base URL %q: %w", apiBaseURL, err)
	}
	path := strings.TrimSuffix(u.Path, "/")
	path = strings.TrimSuffix(path, "/api")
	u.Path = path + "/health"
	u.RawQuery = ""
	return u.String(), nil
}

// Check fetches the server status
func Check(ctx context.Context, httpClient *http.Client, apiBaseURL string) (*Status, error) {
	target, err := HealthURL(apiBaseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &status, nil
}

// VersionsDiffer reports whether the CLI and server were built from
// different releases. Development builds never match.
func VersionsDiffer(cli, server string) bool {
	cli = strings.TrimPrefix(cli, "v")
	server = strings.TrimPrefix(server, "v")

	if cli == "dev" || server == "dev" {
		return true
	}
	return cli != server
}
