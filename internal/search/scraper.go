package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"golang.org/x/time/rate"
)

const (
	searchBaseURL = "https://soundcloud.com/search/sounds"
	userAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Scraper searches SoundCloud's public search page. When a browserless
// rendering endpoint is configured (BROWSERLESS_API_KEY), the page is
// rendered remotely and parsed here; otherwise the raw page is scraped
// directly.
type Scraper struct {
	browserlessKey string
	browserlessURL string
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// NewScraper creates a search scraper throttled to ratePerSecond requests.
func NewScraper(ratePerSecond float64) *Scraper {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	return &Scraper{
		browserlessKey: os.Getenv("BROWSERLESS_API_KEY"),
		browserlessURL: "https://chrome.browserless.io/content",
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// Search queries the search page for "trackName artist" and returns the
// parsed candidates.
func (s *Scraper) Search(ctx context.Context, trackName, artist string) ([]Result, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("%s %s", trackName, artist)
	pageURL := fmt.Sprintf("%s?q=%s", searchBaseURL, url.QueryEscape(query))

	if s.browserlessKey != "" {
		html, err := s.renderPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return ParseResults(html)
	}

	return s.scrapePage(ctx, pageURL)
}

// renderPage fetches a JavaScript-rendered copy of the page through the
// browserless content API.
func (s *Scraper) renderPage(ctx context.Context, pageURL string) (string, error) {
	body := strings.NewReader(fmt.Sprintf(`{"url": %q}`, pageURL))
	endpoint := fmt.Sprintf("%s?token=%s", s.browserlessURL, s.browserlessKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("render request failed with status: %d", res.StatusCode)
	}

	html, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return string(html), nil
}

// scrapePage visits the search page directly and extracts candidate links.
func (s *Scraper) scrapePage(ctx context.Context, pageURL string) ([]Result, error) {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.Async(false),
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Referer", "https://www.google.com/")
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Warn("search request failed", "url", r.Request.URL, "error", err)
	})

	var results []Result

	c.OnHTML("ul li h2 a", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if href == "" || strings.Contains(href, "/search") {
			return
		}
		results = append(results, Result{
			Title:  strings.TrimSpace(e.Text),
			Artist: artistFromPath(href),
			URL:    e.Request.AbsoluteURL(href),
		})
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("search page visit failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// ParseResults extracts track candidates from a rendered search page.
// The noscript markup lists each sound as an h2 anchor whose href is
// "/<user>/<track>".
func ParseResults(html string) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	var results []Result
	doc.Find("ul li h2 a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.Contains(href, "/search") {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = "https://soundcloud.com" + href
		}
		results = append(results, Result{
			Title:  strings.TrimSpace(sel.Text()),
			Artist: artistFromPath(href),
			URL:    href,
		})
	})

	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// artistFromPath extracts the uploader slug from a track URL path,
// e.g. "/daft-punk/around-the-world" -> "daft-punk".
func artistFromPath(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}
