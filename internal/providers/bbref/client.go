// Package bbref fetches box-score pages and extracts the official batting,
// pitching and play-by-play tables from them.
package bbref

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/retry"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

const (
	DefaultBaseURL = "https://www.baseball-reference.com"
	maxPageBytes   = 8 << 20
)

// ErrNoTables is returned when a page carries none of the expected tables
var ErrNoTables = errors.New("no box score tables found")

// PageCache stores raw page HTML keyed by URL
type PageCache interface {
	GetPage(ctx context.Context, pageURL string) (string, error)
	WritePage(ctx context.Context, pageURL, html string) error
}

// Client handles box-score page requests
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	policy     *retry.RetryPolicy
	pages      PageCache
	limiter    *rate.Limiter
	logger     *log.Logger
}

// New creates a new page client. pages may be nil to disable caching.
func New(baseURL string, timeout time.Duration, policy *retry.RetryPolicy, pages PageCache, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if policy == nil {
		policy = retry.NewRetryPolicy(3, time.Second)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Mozilla/5.0 (compatible; FortunaBot/1.0)",
		baseURL:    strings.TrimRight(baseURL, "/"),
		policy:     policy,
		pages:      pages,
		logger:     logger,
	}
}

// SetRateLimit caps outbound page requests per minute; cache hits are not
// counted. perMinute <= 0 removes the cap.
func (c *Client) SetRateLimit(perMinute int) {
	if perMinute <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// FetchGame downloads a box-score page and extracts its tables. Relative
// URLs are resolved against the client's base URL.
func (c *Client) FetchGame(ctx context.Context, pageURL string) (models.GameInput, error) {
	full, err := c.resolve(pageURL)
	if err != nil {
		return models.GameInput{}, err
	}

	html, err := c.page(ctx, full)
	if err != nil {
		return models.GameInput{}, err
	}

	input, err := ParseGame(GameIDFromURL(full), strings.NewReader(html))
	if err != nil {
		return models.GameInput{}, fmt.Errorf("parsing %s: %w", full, err)
	}
	input.SourceURL = full
	return input, nil
}

// page returns the HTML for a URL, from cache when possible
func (c *Client) page(ctx context.Context, pageURL string) (string, error) {
	if c.pages != nil {
		if html, err := c.pages.GetPage(ctx, pageURL); err == nil {
			return html, nil
		}
	}

	var html string
	err := c.policy.Execute(ctx, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Permanent(fmt.Errorf("waiting for rate limit: %w", err))
			}
		}
		body, err := c.fetch(ctx, pageURL)
		if err != nil {
			return err
		}
		html = body
		return nil
	})
	if err != nil {
		return "", err
	}

	if c.pages != nil {
		if err := c.pages.WritePage(ctx, pageURL, html); err != nil && c.logger != nil {
			c.logger.Warn("page cache write failed", "url", pageURL, "err", err)
		}
	}
	return html, nil
}

// fetch makes an HTTP GET request and returns the body
func (c *Client) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("page error: status=%d, body=%s", resp.StatusCode, string(body))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", retry.Permanent(err)
		}
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(body), nil
}

func (c *Client) resolve(pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", pageURL, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if u.Path == "" {
		return "", fmt.Errorf("invalid url %q: empty path", pageURL)
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", c.baseURL, err)
	}
	return base.ResolveReference(u).String(), nil
}

// GameIDFromURL returns the last path segment without its extension,
// e.g. ".../NYA202404050.shtml" -> "NYA202404050"
func GameIDFromURL(pageURL string) string {
	p := pageURL
	if u, err := url.Parse(pageURL); err == nil {
		p = u.Path
	}
	base := path.Base(strings.TrimRight(p, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
