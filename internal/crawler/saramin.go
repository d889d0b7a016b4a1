package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jobscout/jobscout/internal/config"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	pageSize     = 40
	defaultDelay = 1500 * time.Millisecond
)

// SiteClient talks to the job site over plain HTTP. A fixed delay runs after
// every request, success or failure, to keep the crawl polite; the delay is
// context-aware so shutdown is not held hostage to it.
type SiteClient struct {
	searchURL string
	baseURL   string
	delay     time.Duration
	client    *http.Client
	logger    *slog.Logger
}

func NewSiteClient(cfg config.CrawlerConfig, logger *slog.Logger) *SiteClient {
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.RequestDelay
	if delay <= 0 {
		delay = defaultDelay
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &SiteClient{
		searchURL: cfg.SearchURL,
		baseURL:   cfg.BaseURL,
		delay:     delay,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// SearchPage fetches one page of search results for a keyword. An empty slice
// with a nil error means the site ran out of results for this keyword.
func (c *SiteClient) SearchPage(ctx context.Context, keyword string, page int) ([]RawJob, error) {
	params := url.Values{}
	params.Set("searchType", "search")
	params.Set("searchword", keyword)
	params.Set("recruitPage", strconv.Itoa(page))
	params.Set("recruitSort", "relation")
	params.Set("recruitPageCount", strconv.Itoa(pageSize))

	body, err := c.fetch(ctx, c.searchURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return ParseSearchResults(bytes.NewReader(body), c.baseURL)
}

// DetailPage fetches and parses one posting's detail page.
func (c *SiteClient) DetailPage(ctx context.Context, pageURL string) (JobDetail, error) {
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return JobDetail{}, err
	}
	return ParseDetailPage(bytes.NewReader(body)), nil
}

func (c *SiteClient) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")

	resp, err := c.client.Do(req)
	// the politeness delay applies after every request, failed ones included
	defer c.wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("crawler fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crawler fetch %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("crawler read %s: %w", rawURL, err)
	}
	return body, nil
}

func (c *SiteClient) wait(ctx context.Context) {
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
