package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxBodyBytes = 16 << 20
)

// Fetcher performs the single GET each source adapter needs. Every request
// is bounded by its own timeout.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewFetcher wraps httpClient. A nil client gets a transport with dial and
// TLS handshake limits; zero values fall back to the package defaults.
func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 15 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          50,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{client: httpClient, userAgent: userAgent, timeout: timeout, logger: logger}
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("get %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}

	f.logger.Debug("fetched", slog.String("url", rawURL), slog.Int("status", resp.StatusCode), slog.Duration("took", time.Since(start)))

	return nil
}
