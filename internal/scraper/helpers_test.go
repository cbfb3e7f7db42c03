package scraper

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// fakeUpstream answers requests from canned bodies keyed by host+path and,
// for Jobicy, the geo query parameter.
type fakeUpstream struct {
	mu       sync.Mutex
	bodies   map[string]string
	status   map[string]int
	requests []string
	agents   []string
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{bodies: map[string]string{}, status: map[string]int{}}
}

func routeKey(r *http.Request) string {
	key := r.URL.Host + r.URL.Path
	if geo := r.URL.Query().Get("geo"); geo != "" {
		key += "?geo=" + geo
	}
	return key
}

func (u *fakeUpstream) set(key, body string) { u.bodies[key] = body }

func (u *fakeUpstream) fetcher(t *testing.T) *Fetcher {
	t.Helper()
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		key := routeKey(r)
		u.mu.Lock()
		u.requests = append(u.requests, key)
		u.agents = append(u.agents, r.Header.Get("User-Agent"))
		body, ok := u.bodies[key]
		status := u.status[key]
		u.mu.Unlock()

		if !ok {
			return nil, errors.New("connection refused")
		}
		if status == 0 {
			status = http.StatusOK
		}
		return &http.Response{
			StatusCode: status,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    r,
		}, nil
	})}

	return NewFetcher(client, "", time.Second, discardLogger())
}

func (u *fakeUpstream) requested() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.requests...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	keyRemoteOK  = "remoteok.com/api"
	keyRemotive  = "remotive.com/api/remote-jobs"
	keyJobicy    = "jobicy.com/api/v2/remote-jobs"
	keyArbeitnow = "www.arbeitnow.com/api/job-board-api"
)

func jobicyKey(geo string) string { return keyJobicy + "?geo=" + geo }
