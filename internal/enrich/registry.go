package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/errors"
	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/logging"
)

// DefaultRegistryURL is the public npm registry
const DefaultRegistryURL = "https://registry.npmjs.org"

// RegistryClient looks up package descriptions from an npm-compatible
// registry, rate limited and optionally backed by a Cache.
type RegistryClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	cache       *Cache
	logger      *slog.Logger
}

// RegistryOptions configures a RegistryClient
type RegistryOptions struct {
	BaseURL   string
	RateLimit float64 // requests per second
	Timeout   time.Duration
	Cache     *Cache
}

// NewRegistryClient creates a client
func NewRegistryClient(opts RegistryOptions) *RegistryClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultRegistryURL
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}

	return &RegistryClient{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: opts.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		cache:       opts.Cache,
		logger:      logging.Component("enrich"),
	}
}

type packageDocument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Describe returns the registry description for name. Cached entries skip
// the network entirely.
func (c *RegistryClient) Describe(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.ExternalErrorf(nil, "empty package name")
	}

	if c.cache != nil {
		if d, ok := c.cache.Get(name); ok {
			return d, nil
		}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.packageURL(name), nil)
	if err != nil {
		return "", errors.ExternalErrorf(err, "build registry request for %s", name)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.ExternalErrorf(err, "registry lookup for %s", name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", errors.ExternalErrorf(nil, "registry lookup for %s: status %d", name, resp.StatusCode)
	}

	var doc packageDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&doc); err != nil {
		return "", errors.ExternalErrorf(err, "decode registry document for %s", name)
	}

	description := strings.TrimSpace(doc.Description)
	if description == "" {
		return "", errors.ExternalErrorf(nil, "no description for %s", name)
	}

	if c.cache != nil {
		if err := c.cache.Put(name, description); err != nil {
			c.logger.Warn("failed to cache description", "name", name, "error", err)
		}
	}

	return description, nil
}

// packageURL escapes the scope separator the way the registry expects
// ("@scope/pkg" becomes "@scope%2Fpkg").
func (c *RegistryClient) packageURL(name string) string {
	return c.baseURL + "/" + url.PathEscape(name)
}

// Prefetch describes names concurrently with at most workers lookups in
// flight. Individual failures are returned per name, never as an error;
// only context cancellation aborts.
func Prefetch(ctx context.Context, d Describer, names []string, workers int) (map[string]string, map[string]error, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]string, len(names))
	failures := make([]error, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], failures[i] = d.Describe(ctx, name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	described := make(map[string]string)
	failed := make(map[string]error)
	for i, name := range names {
		if failures[i] != nil {
			failed[name] = failures[i]
			continue
		}
		described[name] = results[i]
	}
	return described, failed, nil
}

// FromConfig builds a cached registry client. The returned close func
// releases the cache and is safe to call when caching is off.
func FromConfig(cfg config.EnrichConfig) (*RegistryClient, func() error, error) {
	opts := RegistryOptions{
		BaseURL:   cfg.RegistryURL,
		RateLimit: cfg.RateLimit,
		Timeout:   cfg.Timeout,
	}

	closer := func() error { return nil }
	if cfg.CachePath != "" {
		cache, err := OpenCache(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		opts.Cache = cache
		closer = cache.Close
	}

	return NewRegistryClient(opts), closer, nil
}
