package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "blockcal/internal/log"
)

// userAgent identifies this client to the booking channels' feed servers.
const userAgent = "blockcal/1.0"

// fetchTimeout bounds a single feed request end to end.
const fetchTimeout = 20 * time.Second

// Source represents a single ICS feed source.
type Source struct {
	// Name is the channel identifier ("airbnb" or "booking"); it prefixes
	// every identity derived from this feed.
	Name string
	// URL is the ICS endpoint.
	URL string
}

// Fetcher retrieves ICS feeds over HTTP. It is deliberately strict: no
// caching, no retries, and any non-2xx response is an error. A stale or
// partial feed must never be mistaken for a current one, since missing
// blocks can lead to a double-booking.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the fixed feed timeout. Redirects are
// followed (http.Client default).
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Fetch retrieves a single ICS feed and returns its body.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	if src.URL == "" {
		return nil, errors.New("source URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	appLog.Info("feed fetch start", "channel", src.Name, "url", redactURL(src.URL))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s feed: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s feed: unexpected status %s", src.Name, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s feed: read body: %w", src.Name, err)
	}

	appLog.Info("feed fetch success",
		"channel", src.Name,
		"url", redactURL(src.URL),
		"status", resp.StatusCode,
		"bytes", len(body),
	)
	return body, nil
}

// FetchParsed retrieves a feed and parses it into raw components.
func (f *Fetcher) FetchParsed(ctx context.Context, src Source) ([]RawComponent, error) {
	body, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return Parse(src, body)
}

// redactURL hides path and query of a feed URL for logging purposes.
// Reservation export URLs embed per-property access tokens.
//
//	https://example.com/calendar/ical/123.ics?s=token
//	-> https://example.com/...(redacted)
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "ics://...(redacted)"
	}

	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}
	return u[:j] + redactedSuffix
}
