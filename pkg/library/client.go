package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowpen/pkg/cache"
	"github.com/matzehuels/flowpen/pkg/observability"
)

const httpTimeout = 10 * time.Second

// installedComponentsQuery mirrors the fields of [Component].
const installedComponentsQuery = `query InstalledComponents {
  getInstalledComponents {
    guid name nickname description icon libraryName category subcategory isObsolete isVariable
    inputs { name nickname description type isOptional }
    outputs { name nickname description type isOptional }
  }
}`

// Client fetches the template library from a GraphQL endpoint.
// Responses are cached under [cache.Keyer.LibraryKey] for the client's TTL.
type Client struct {
	endpoint string
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	headers  map[string]string
	logger   *log.Logger
}

// NewClient creates a Client. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewClient(endpoint string, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: httpTimeout},
		cache:    c,
		keyer:    keyer,
		ttl:      ttl,
		logger:   logger,
	}
}

// WithHeader returns the client with an extra header applied to every
// request, such as an authorization token.
func (c *Client) WithHeader(key, value string) *Client {
	if c.headers == nil {
		c.headers = make(map[string]string)
	}
	c.headers[key] = value
	return c
}

// Fetch returns the installed templates. If refresh is true the cache is
// bypassed; the fresh response is still written back.
func (c *Client) Fetch(ctx context.Context, refresh bool) (*Library, error) {
	key := c.keyer.LibraryKey(c.endpoint)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if lib, err := Parse(data); err == nil {
				c.logger.Debug("library cache hit", "endpoint", c.endpoint, "components", lib.Len())
				return lib, nil
			}
			c.logger.Warn("discarding unreadable cached library", "key", key)
		}
	}

	var body []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = c.post(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch library from %s: %w", c.endpoint, err)
	}

	lib, err := Parse(body)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("library cache write failed", "error", err)
	}
	c.logger.Debug("library fetched", "endpoint", c.endpoint, "components", lib.Len())
	return lib, nil
}

func (c *Client) post(ctx context.Context) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"query": installedComponentsQuery})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := splitURL(c.endpoint)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return raw, ""
	}
	return u.Host, u.Path
}
