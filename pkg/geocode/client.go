// Package geocode resolves coordinates to a human readable address. Lookups
// are best effort: every failure is logged and reported as "no address".
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/dixieflatline76/PanCrop/config"
	"github.com/dixieflatline76/PanCrop/util/log"
)

const (
	// DefaultEndpoint is the public Nominatim instance.
	DefaultEndpoint = "https://nominatim.openstreetmap.org"
	DefaultTimeout  = 5 * time.Second
)

// AddressResolver turns coordinates into an address.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, lat, lon float64) (string, bool)
}

// Client talks to a Nominatim compatible reverse geocoding API.
type Client struct {
	endpoint  string
	apiKey    string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	limiter   *rate.Limiter
	group     singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its transport is wrapped to add
// the User-Agent header.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAPIKey adds a key parameter to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithRateLimit sets the request rate.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithTimeout bounds each lookup.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent overrides the default "PanCrop/<version>" agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient returns a client limited to one request per second.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:  DefaultEndpoint,
		userAgent: config.AppName + "/" + config.AppVersion,
		timeout:   DefaultTimeout,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := http.DefaultTransport
	if c.http != nil && c.http.Transport != nil {
		base = c.http.Transport
	}
	h := &http.Client{}
	if c.http != nil {
		*h = *c.http
	}
	h.Transport = &UserAgentTransport{RoundTripper: base, UserAgent: c.userAgent}
	c.http = h
	return c
}

// ResolveAddress returns the display name for the coordinates. Concurrent
// calls for the same point share one request.
func (c *Client) ResolveAddress(ctx context.Context, lat, lon float64) (string, bool) {
	key := strconv.FormatFloat(lat, 'f', 6, 64) + "," + strconv.FormatFloat(lon, 'f', 6, 64)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.lookup(ctx, lat, lon)
	})

	select {
	case <-ctx.Done():
		log.Printf("Geocode: lookup for %s abandoned: %v", key, ctx.Err())
		return "", false
	case res := <-ch:
		if res.Err != nil {
			log.Printf("Geocode: lookup for %s failed: %v", key, res.Err)
			return "", false
		}
		addr := res.Val.(string)
		return addr, addr != ""
	}
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (c *Client) lookup(ctx context.Context, lat, lon float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "18")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	u := c.endpoint + "/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var result reverseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("geocoder: %s", result.Error)
	}
	return result.DisplayName, nil
}
