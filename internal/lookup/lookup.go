// Package lookup resolves the host's public IP address and its geolocation
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ilexum-group/sysreport/internal/utils"
	"github.com/ilexum-group/sysreport/pkg/models"
)

// Defaults for the public lookup services
const (
	DefaultIPEchoURL     = "https://api.ipify.org"
	DefaultGeoURL        = "http://ip-api.com/json/"
	DefaultIPEchoTimeout = 5 * time.Second
	DefaultGeoTimeout    = 10 * time.Second

	maxBodySize = 1 << 16
)

// ErrUnexpectedStatus is returned when a lookup service answers with a non-success status
var ErrUnexpectedStatus = errors.New("unexpected status code")

// GeoResolver resolves an IP address to a location without the network
type GeoResolver interface {
	Resolve(ip string) (models.GeoInfo, error)
}

// Options configures a Client
type Options struct {
	IPEchoURL     string
	GeoURL        string
	IPEchoTimeout time.Duration
	GeoTimeout    time.Duration
	// Fallback is consulted when the geolocation service cannot be reached
	Fallback GeoResolver
}

// Client performs the external IP and geolocation lookups
type Client struct {
	httpClient    *http.Client
	ipEchoURL     string
	geoURL        string
	ipEchoTimeout time.Duration
	geoTimeout    time.Duration
	fallback      GeoResolver
}

// NewClient creates a Client, filling unset options with the defaults
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient:    &http.Client{},
		ipEchoURL:     opts.IPEchoURL,
		geoURL:        opts.GeoURL,
		ipEchoTimeout: opts.IPEchoTimeout,
		geoTimeout:    opts.GeoTimeout,
		fallback:      opts.Fallback,
	}
	if c.ipEchoURL == "" {
		c.ipEchoURL = DefaultIPEchoURL
	}
	if c.geoURL == "" {
		c.geoURL = DefaultGeoURL
	}
	if c.ipEchoTimeout <= 0 {
		c.ipEchoTimeout = DefaultIPEchoTimeout
	}
	if c.geoTimeout <= 0 {
		c.geoTimeout = DefaultGeoTimeout
	}
	return c
}

// ExternalIP asks the IP echo service for the host's public address
func (c *Client) ExternalIP(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.ipEchoURL, c.ipEchoTimeout, func(code int) bool {
		return code >= 200 && code < 300
	})
	if err != nil {
		return "", fmt.Errorf("external ip lookup: %w", err)
	}

	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return "", errors.New("external ip lookup: empty response")
	}
	return ip, nil
}

// Geolocate queries the geolocation service for the host's public address.
// Fields the service omits are reported as N/A. When the service fails and
// an offline resolver is configured, the resolver answers instead.
func (c *Client) Geolocate(ctx context.Context) (models.GeoInfo, error) {
	info, err := c.geolocateHTTP(ctx)
	if err == nil || c.fallback == nil {
		return info, err
	}

	utils.LogWarn("Geolocation service failed, using offline database", map[string]string{
		"error": err.Error(),
	})
	ip, ipErr := c.ExternalIP(ctx)
	if ipErr != nil {
		return models.GeoInfo{}, errors.Join(err, ipErr)
	}
	info, fbErr := c.fallback.Resolve(ip)
	if fbErr != nil {
		return models.GeoInfo{}, errors.Join(err, fbErr)
	}
	return info, nil
}

func (c *Client) geolocateHTTP(ctx context.Context) (models.GeoInfo, error) {
	body, err := c.get(ctx, c.geoURL, c.geoTimeout, func(code int) bool {
		return code == http.StatusOK
	})
	if err != nil {
		return models.GeoInfo{}, fmt.Errorf("geolocation lookup: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return models.GeoInfo{}, fmt.Errorf("geolocation lookup: decode response: %w", err)
	}

	return models.GeoInfo{
		IP:       field(fields, "query"),
		Country:  field(fields, "country"),
		Region:   field(fields, "regionName"),
		City:     field(fields, "city"),
		Zip:      field(fields, "zip"),
		Lat:      field(fields, "lat"),
		Lon:      field(fields, "lon"),
		Timezone: field(fields, "timezone"),
		ISP:      field(fields, "isp"),
	}, nil
}

func (c *Client) get(ctx context.Context, url string, timeout time.Duration, ok func(int) bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", utils.AppName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !ok(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func field(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprint(v)
	}
	return models.NotAvailable
}
