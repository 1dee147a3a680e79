// Package geocoder resolves addresses and postal codes through a hosted
// geocoding API over fasthttp.
package geocoder

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/devcamper/internal/core/domain"
	"github.com/samirrijal/devcamper/internal/pkg/config"
	"github.com/samirrijal/devcamper/internal/pkg/metrics"
)

// ErrNoAPIKey is returned by New when the provider needs a key and none is set.
var ErrNoAPIKey = errors.New("geocoder: api key is required")

// doer is the part of fasthttp.Client the geocoder uses.
type doer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

// provider builds request URLs and decodes responses for one geocoding API.
type provider interface {
	name() string
	defaultBaseURL() string
	requestURL(base, apiKey, address string) string
	decode(body []byte) ([]domain.GeoResult, error)
}

// Client implements ports.Geocoder.
type Client struct {
	http     doer
	provider provider
	apiKey   string
	baseURL  string
	timeout  time.Duration
}

// New builds a Client for the configured provider.
func New(cfg config.GeocoderConfig) (*Client, error) {
	p, err := providerFor(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = p.defaultBaseURL()
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "devcamper-geocoder",
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		provider: p,
		apiKey:   cfg.APIKey,
		baseURL:  base,
		timeout:  timeout,
	}, nil
}

func providerFor(name string) (provider, error) {
	switch strings.ToLower(name) {
	case "mapquest":
		return mapquest{}, nil
	case "opencage":
		return opencage{}, nil
	default:
		return nil, fmt.Errorf("geocoder: unsupported provider %q", name)
	}
}

// Provider returns the provider name used in metrics and logs.
func (c *Client) Provider() string { return c.provider.name() }

// Geocode returns the provider's candidates for address, best match first.
// An address the provider cannot resolve yields an empty slice, not an error.
func (c *Client) Geocode(ctx context.Context, address string) ([]domain.GeoResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return nil, ctx.Err()
		}
		if left < timeout {
			timeout = left
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.provider.requestURL(c.baseURL, c.apiKey, address))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	name := c.provider.name()
	start := time.Now()
	err := c.http.DoTimeout(req, resp, timeout)
	metrics.GeocodeDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", name, err)
	}

	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		metrics.GeocodeRequests.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("%s returned HTTP %d", name, code)
	}

	results, err := c.provider.decode(resp.Body())
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("%s decode: %w", name, err)
	}

	outcome := "ok"
	if len(results) == 0 {
		outcome = "empty"
	}
	metrics.GeocodeRequests.WithLabelValues(name, outcome).Inc()
	return results, nil
}

func withQuery(base, path string, q url.Values) string {
	return base + path + "?" + q.Encode()
}
