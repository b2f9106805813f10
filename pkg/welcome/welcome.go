// Package welcome resolves the banner's opening line, optionally from a
// remote URL. Fetching is strictly best-effort: any failure falls back to
// the configured default so the banner is never blocked or broken by the
// network.
package welcome

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"motdyn/pkg/logger"
)

// maxBodyBytes caps how much of the response is read; a welcome line is
// expected to be short.
const maxBodyBytes = 64 * 1024

// Provider fetches the welcome text.
type Provider struct {
	// URL to GET; empty means "use Default without any network call".
	URL string
	// Timeout bounds the whole request.
	Timeout time.Duration
	// Default is returned whenever the fetch cannot produce usable text.
	Default string
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Fetch returns the welcome text. It issues at most one GET and never
// returns an error: timeout, transport failure, non-2xx status and an
// empty body all yield Default.
func (p Provider) Fetch(ctx context.Context) string {
	if p.URL == "" {
		return p.Default
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		logger.L.Debug("welcome fetch skipped", "url", p.URL, "err", err)
		return p.Default
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.L.Debug("welcome fetch failed", "url", p.URL, "err", err)
		return p.Default
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.L.Debug("welcome fetch rejected", "url", p.URL, "status", resp.StatusCode)
		return p.Default
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logger.L.Debug("welcome fetch read failed", "url", p.URL, "err", err)
		return p.Default
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return p.Default
	}
	return text
}
