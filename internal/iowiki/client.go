// Package iowiki implements the Wikipedia lookup behind the
// enrichment walker. This is an impure I/O package that talks to the
// Wikipedia REST and MediaWiki action APIs and memoizes successful
// lookups in a local SQLite cache.
package iowiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aviatlas/avidb/pkg/avidb"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/wiki"
)

// Client resolves page titles against Wikipedia. It implements
// wiki.Lookup; construct it with New and Close it after the run to
// release the cache handle.
type Client struct {
	http      *http.Client
	cache     *cache
	restURL   string
	actionURL string
	userAgent string
}

// New creates a Client with the production Wikipedia endpoints and
// the lookup cache at the configured cache path.
func New(cfg *config.Config) (*Client, error) {
	kc, err := openCache(config.WikiCachePath(cfg.HomeDir))
	if err != nil {
		return nil, CacheError("open lookup cache", err)
	}

	return &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		cache:     kc,
		restURL:   config.WikipediaRESTURL,
		actionURL: config.WikipediaActionURL,
		userAgent: userAgent(),
	}, nil
}

// Close releases the lookup cache.
func (c *Client) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.close()
}

// Wikipedia asks API consumers to identify themselves.
func userAgent() string {
	return fmt.Sprintf("avidb/%s (bird taxonomy updater)", avidb.Version)
}

// restSummary is the part of the REST summary payload avidb reads.
type restSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	OriginalImage struct {
		Source string `json:"source"`
	} `json:"originalimage"`
}

// Summary resolves one title. Cached summaries are served without a
// request; missing pages and disambiguation pages return
// wiki.ErrNotFound and are never cached.
func (c *Client) Summary(
	ctx context.Context,
	title string,
) (*wiki.Summary, error) {
	if sum, ok := c.cache.get(ctx, title); ok {
		return sum, nil
	}

	endpoint := fmt.Sprintf(
		"%s/page/summary/%s", c.restURL, url.PathEscape(title))
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// A missing page is normal, most taxa have no article
	if resp.StatusCode == http.StatusNotFound {
		return nil, wiki.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"wikipedia summary for %q: unexpected status %s",
			title, resp.Status)
	}

	var data restSummary
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf(
			"wikipedia summary for %q: %w", title, err)
	}

	if data.Type == "disambiguation" {
		return nil, wiki.ErrNotFound
	}

	pageURL := data.ContentURLs.Desktop.Page
	if pageURL == "" {
		return nil, wiki.ErrNotFound
	}

	imageURL := data.Thumbnail.Source
	if imageURL == "" {
		imageURL = data.OriginalImage.Source
	}
	// Some articles carry no summary image; the action API finds
	// one for a fair share of them
	if imageURL == "" {
		imageURL = c.pageImage(ctx, title)
	}

	sum := &wiki.Summary{
		Title:    data.Title,
		PageURL:  pageURL,
		ImageURL: imageURL,
	}

	if err := c.cache.put(ctx, title, sum); err != nil {
		slog.Debug("Cannot cache wiki lookup",
			"title", title, "error", err)
	}

	return sum, nil
}

// pageImageResponse is the part of the pageimages payload avidb reads.
type pageImageResponse struct {
	Query struct {
		Pages map[string]struct {
			Thumbnail struct {
				Source string `json:"source"`
			} `json:"thumbnail"`
		} `json:"pages"`
	} `json:"query"`
}

// pageImage fetches a page's main image through the action API.
// It is best effort: any failure returns "".
func (c *Client) pageImage(ctx context.Context, title string) string {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("titles", title)
	params.Set("prop", "pageimages")
	params.Set("pithumbsize", "400")
	params.Set("pilimit", "1")

	endpoint := c.actionURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("Cannot fetch page image",
			"title", title, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var data pageImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return ""
	}

	for _, page := range data.Query.Pages {
		if page.Thumbnail.Source != "" {
			return page.Thumbnail.Source
		}
	}
	return ""
}
