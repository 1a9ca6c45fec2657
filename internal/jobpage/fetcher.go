// Package jobpage imports a job description from a posting URL.
package jobpage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/coverletter/internal/model"
)

const (
	// DefaultUserAgent is sent with every page request.
	DefaultUserAgent = "Mozilla/5.0 (compatible; CoverLetterBot/1.0)"
	// DefaultMaxBytes caps how much of a page body is read.
	DefaultMaxBytes = 2 << 20
)

var (
	// ErrInvalidURL is returned for anything other than an absolute http(s) URL.
	ErrInvalidURL = errors.New("Please enter a valid http(s) job posting URL.")
	// ErrNoContent is returned when no readable text was found on the page.
	ErrNoContent = errors.New("Could not find a job description on that page.")
)

var _ model.JobPageFetcher = (*Fetcher)(nil)

// jobPostingSelectors are tried in order; the first match wins.
var jobPostingSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

const noiseSelector = "nav, footer, header, script, style, noscript, form, iframe, svg, " +
	".ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup"

// Fetcher downloads job postings. Greenhouse and Lever postings are read
// through their public JSON APIs; anything else is scraped as HTML.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    *slog.Logger

	greenhouseBase string
	leverBase      string
}

// NewFetcher creates a Fetcher using the given client.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:         client,
		userAgent:      DefaultUserAgent,
		maxBytes:       DefaultMaxBytes,
		logger:         logger,
		greenhouseBase: greenhouseBaseURL,
		leverBase:      leverBaseURL,
	}
}

// Fetch returns the readable job description text behind rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	var text string
	if board, ok := matchBoard(u); ok {
		text, err = f.fetchBoard(ctx, board)
	} else {
		text, err = f.fetchHTML(ctx, u.String())
	}
	if err != nil {
		return "", err
	}

	if text == "" {
		return "", ErrNoContent
	}
	f.logger.Debug("job page imported", "host", u.Host, "chars", len(text))
	return text, nil
}

func (f *Fetcher) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	body, err := f.get(ctx, pageURL, "text/html,application/xhtml+xml")
	if err != nil {
		return "", err
	}
	return ExtractMainText(string(body))
}

// get performs a GET and returns the (capped) body of a 200 response.
func (f *Fetcher) get(ctx context.Context, target, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("job page request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("job page fetch for %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("job page fetch for %s", target),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("job page read for %s: %w", target, err)
	}
	return body, nil
}

// ExtractMainText parses an HTML page, drops navigation and other noise,
// and returns the text of the most specific job-posting container.
func ExtractMainText(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse job page: %w", err)
	}
	doc.Find(noiseSelector).Remove()

	var main *goquery.Selection
	for _, selector := range jobPostingSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}
	return selectionText(main), nil
}
