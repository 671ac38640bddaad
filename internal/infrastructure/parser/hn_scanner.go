package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"TopicTracker/internal/domain"
	"TopicTracker/internal/scanner"
	"TopicTracker/pkg/retry"
)

const (
	defaultAlgoliaURL = "https://hn.algolia.com/api/v1"
	defaultHNPageSize = 30
)

// algoliaResponse mirrors the Algolia search API payload.
type algoliaResponse struct {
	Hits []algoliaHit `json:"hits"`
}

type algoliaHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAt   string `json:"created_at"`
	Author      string `json:"author"`
	StoryText   string `json:"story_text"`
}

// HNScanner fetches the current Hacker News front page through the Algolia
// API. The source exposes a snapshot, not a delta feed, so Since is advisory:
// the scanner always fetches the full current top listing and the dedup layer
// drops already-stored items.
type HNScanner struct {
	client   *http.Client
	baseURL  string
	pageSize int
	logger   *slog.Logger
	retryCfg retry.Config
}

// NewHNScanner wires an HTTP client; baseURL defaults to the public Algolia
// endpoint and pageSize to the front-page size.
func NewHNScanner(client *http.Client, baseURL string, retryCfg retry.Config, logger *slog.Logger) *HNScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultAlgoliaURL
	}
	retryCfg.Logger = logger
	return &HNScanner{
		client:   client,
		baseURL:  baseURL,
		pageSize: defaultHNPageSize,
		logger:   logger,
		retryCfg: retryCfg,
	}
}

// Name identifies the strategy inside the registry.
func (h *HNScanner) Name() string {
	return "hackernews"
}

// Source reports which source the produced items belong to.
func (h *HNScanner) Source() domain.Source {
	return domain.SourceHN
}

// Scan fetches the current front page and normalizes every hit. Hits without
// an id or title are skipped and logged; they never abort the fetch.
func (h *HNScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Item, error) {
	if req.Since != nil && h.logger != nil {
		h.logger.Debug("hn source is snapshot-only, ignoring cursor", "since", req.Since.Format(time.RFC3339))
	}

	pageSize := h.pageSize
	if v, ok := req.Options["hitsPerPage"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}

	resp, err := h.fetchFrontPage(ctx, pageSize)
	if err != nil {
		return nil, err
	}

	fetchedAt := time.Now().UTC()
	items := make([]domain.Item, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		item, err := normalizeHit(hit, fetchedAt)
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("skip malformed hn hit", "object_id", hit.ObjectID, "error", err)
			}
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func (h *HNScanner) fetchFrontPage(ctx context.Context, pageSize int) (*algoliaResponse, error) {
	endpoint := fmt.Sprintf("%s/search?%s", h.baseURL, url.Values{
		"tags":        {"front_page"},
		"hitsPerPage": {strconv.Itoa(pageSize)},
	}.Encode())

	var result algoliaResponse
	err := retry.Do(ctx, h.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", "TopicTracker/1.0")

		resp, err := h.client.Do(req)
		if err != nil {
			return fmt.Errorf("request front page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("algolia returned %s", resp.Status)
			// 4xx will not heal on retry; only transport errors and 5xx do.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Permanent(statusErr)
			}
			return statusErr
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if err := json.Unmarshal(raw, &result); err != nil {
			return retry.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func normalizeHit(hit algoliaHit, fetchedAt time.Time) (domain.Item, error) {
	if hit.ObjectID == "" {
		return domain.Item{}, &domain.ParseError{Unit: hit.Title, Err: fmt.Errorf("hit has no objectID")}
	}
	if hit.Title == "" {
		return domain.Item{}, &domain.ParseError{Unit: hit.ObjectID, Err: fmt.Errorf("hit has no title")}
	}

	publishedAt := fetchedAt
	if hit.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, hit.CreatedAt); err == nil {
			publishedAt = parsed.UTC()
		}
	}

	points := hit.Points
	if points < 0 {
		points = 0
	}

	return domain.Item{
		ID:          hit.ObjectID,
		Source:      domain.SourceHN,
		Title:       hit.Title,
		URL:         hit.URL,
		FullText:    hit.StoryText,
		Popularity:  points,
		PublishedAt: publishedAt,
		FetchedAt:   fetchedAt,
	}, nil
}
