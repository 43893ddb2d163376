package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Page is one batch of raw records from the scraper plus the reference to
// the next page, empty when pagination is exhausted.
type Page struct {
	Records []RawRecord `json:"events"`
	Next    string      `json:"next,omitempty"`
}

// Feed abstracts the external scraper collaborator. The core never touches
// HTML: it consumes already-extracted row records page by page.
type Feed interface {
	Fetch(ctx context.Context, ref string) (Page, error)
}

// HTTPFeed reads pages from the scraper sidecar's JSON endpoint. An empty
// ref fetches the first page; subsequent refs come from Page.Next and may be
// relative to the base address.
type HTTPFeed struct {
	base   string
	client *http.Client
}

func NewHTTPFeed(base string, timeout time.Duration) *HTTPFeed {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &HTTPFeed{
		base:   base,
		client: &http.Client{Timeout: timeout, Transport: tr},
	}
}

func (f *HTTPFeed) Fetch(ctx context.Context, ref string) (Page, error) {
	target, err := f.resolve(ref)
	if err != nil {
		return Page{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("feed: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Page{}, fmt.Errorf("feed: %s returned %d: %s", target, resp.StatusCode, string(body))
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page{}, fmt.Errorf("feed: decode %s: %w", target, err)
	}
	return page, nil
}

func (f *HTTPFeed) resolve(ref string) (string, error) {
	base, err := url.Parse(f.base)
	if err != nil {
		return "", fmt.Errorf("feed: bad base url %q: %w", f.base, err)
	}
	if ref == "" {
		return base.String(), nil
	}
	next, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("feed: bad page ref %q: %w", ref, err)
	}
	return base.ResolveReference(next).String(), nil
}
