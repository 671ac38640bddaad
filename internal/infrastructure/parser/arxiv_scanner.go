package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TopicTracker/internal/domain"
	"TopicTracker/internal/scanner"
	"TopicTracker/pkg/retry"
)

const (
	arxivBaseURL = "https://arxiv.org"
)

var dateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// ArxivScanner crawls category listing pages and extracts papers published
// at or after the requested lower bound. The listing supports true
// incremental fetch: entries are newest-first, so paging stops at the first
// entry older than Since. A paper's full text is approximated by its
// abstract.
type ArxivScanner struct {
	client   *http.Client
	pageSize int
	logger   *slog.Logger
	retryCfg retry.Config
}

// NewArxivScanner wires an HTTP client; pageSize defaults to 200.
func NewArxivScanner(client *http.Client, retryCfg retry.Config, logger *slog.Logger) *ArxivScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	retryCfg.Logger = logger
	return &ArxivScanner{client: client, pageSize: 200, logger: logger, retryCfg: retryCfg}
}

// Name identifies the strategy inside the registry.
func (a *ArxivScanner) Name() string {
	return "arxiv"
}

// Source reports which source the produced items belong to.
func (a *ArxivScanner) Source() domain.Source {
	return domain.SourceArxiv
}

// Scan walks through each category URL and returns every paper with a
// publication date at or after req.Since. With no Since, the whole listing
// is collected.
func (a *ArxivScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Item, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no categories provided for site %s", req.SiteName)
	}

	fetchedAt := time.Now().UTC()
	results := make([]domain.Item, 0)
	seen := map[string]struct{}{}

	for _, cat := range req.Categories {
		skip := 0
		for {
			pageURL, err := buildPageURL(cat.URL, skip, a.pageSize)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", cat.Name, err)
			}

			doc, err := a.fetchDocument(ctx, pageURL)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", cat.Name, err)
			}

			pageItems, shouldContinue := a.extractItems(doc, req.Since, cat.Name, fetchedAt)
			for _, item := range pageItems {
				if _, ok := seen[item.ID]; ok {
					continue
				}
				seen[item.ID] = struct{}{}
				results = append(results, item)
			}

			if !shouldContinue {
				break
			}
			skip += a.pageSize
		}
	}

	return results, nil
}

func (a *ArxivScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var doc *goquery.Document
	err := retry.Do(ctx, a.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", "TopicTracker/1.0")

		resp, err := a.client.Do(req)
		if err != nil {
			return fmt.Errorf("request document: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("arxiv returned %s", resp.Status)
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("parse document: %w", err)
		}
		return nil
	})
	return doc, err
}

func (a *ArxivScanner) extractItems(doc *goquery.Document, since *time.Time, category string, fetchedAt time.Time) ([]domain.Item, bool) {
	var (
		collected    []domain.Item
		continueScan = true
		processed    int
	)

	doc.Find("dl > dt").EachWithBreak(func(i int, dt *goquery.Selection) bool {
		dd := dt.Next()
		processed++

		item, err := parseEntry(dt, dd, fetchedAt)
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("skip malformed arxiv entry", "category", category, "error", err)
			}
			return true
		}

		if since != nil && item.PublishedAt.Before(since.UTC()) {
			continueScan = false
			return false
		}

		collected = append(collected, item)
		return true
	})

	if processed < a.pageSize {
		continueScan = false
	}

	return collected, continueScan
}

func parseEntry(dt, dd *goquery.Selection, fetchedAt time.Time) (domain.Item, error) {
	id := strings.TrimSpace(dt.Find("a[href*=\"/abs/\"]").First().Text())
	if id == "" {
		if href, exists := dt.Find("a[href*=\"/abs/\"]").First().Attr("href"); exists {
			id = strings.TrimPrefix(href, "/abs/")
		}
	}
	id = strings.TrimPrefix(id, "arXiv:")

	link := dt.Find("a[href*=\"/abs/\"]").First()
	href, _ := link.Attr("href")
	if href != "" && !strings.HasPrefix(href, "http") {
		href = strings.TrimSuffix(arxivBaseURL, "/") + href
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimPrefix(title, "Title:")
	title = strings.TrimSpace(title)

	abstract := dd.Find(".mathjax").First().Text()
	abstract = strings.TrimPrefix(abstract, "Abstract:")
	abstract = strings.TrimSpace(abstract)

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}

	publishedAt := fetchedAt
	if match := dateExpr.FindString(dateText); match != "" {
		if parsed, err := time.Parse("2 Jan 2006", match); err == nil {
			publishedAt = parsed.UTC()
		}
	}

	if id == "" {
		return domain.Item{}, &domain.ParseError{Unit: href, Err: fmt.Errorf("entry has no identifier")}
	}
	if title == "" {
		return domain.Item{}, &domain.ParseError{Unit: id, Err: fmt.Errorf("entry has no title")}
	}

	return domain.Item{
		ID:          id,
		Source:      domain.SourceArxiv,
		Title:       title,
		URL:         href,
		FullText:    abstract,
		Popularity:  0,
		PublishedAt: publishedAt,
		FetchedAt:   fetchedAt,
	}, nil
}

func buildPageURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid category url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
