package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TopicTracker/internal/domain"
	"TopicTracker/internal/scanner"
	"TopicTracker/pkg/retry"
)

func TestBuildPageURL(t *testing.T) {
	t.Parallel()

	base := "https://arxiv.org/list/cs.AI/recent"
	u, err := buildPageURL(base, 200, 100)
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)

	assert.Equal(t, "https", parsed.Scheme)
	assert.Equal(t, "arxiv.org", parsed.Host)
	q := parsed.Query()
	assert.Equal(t, "200", q.Get("skip"))
	assert.Equal(t, "100", q.Get("show"))
}

func TestParseEntry(t *testing.T) {
	t.Parallel()

	html := `
	<dl>
	  <dt>
	    <span class="list-identifier"><a href="/abs/1234.56789">arXiv:1234.56789</a></span>
	  </dt>
	  <dd>
	    <div class="list-date">Date: 8 Nov 2025</div>
	    <div class="list-title mathjax">Title: Sample Title</div>
	    <p class="mathjax">Abstract: Sample abstract text.</p>
	  </dd>
	</dl>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	fetchedAt := time.Date(2025, time.November, 9, 12, 0, 0, 0, time.UTC)
	item, err := parseEntry(doc.Find("dt").First(), doc.Find("dd").First(), fetchedAt)
	require.NoError(t, err)

	assert.Equal(t, "1234.56789", item.ID, "identifier is stored without the arXiv: prefix")
	assert.Equal(t, domain.SourceArxiv, item.Source)
	assert.Equal(t, "Sample Title", item.Title)
	assert.Equal(t, "Sample abstract text.", item.FullText)
	assert.Equal(t, "https://arxiv.org/abs/1234.56789", item.URL)
	assert.Equal(t, 0, item.Popularity)
	assert.Equal(t, "2025-11-08", item.PublishedAt.Format("2006-01-02"))
	assert.Equal(t, fetchedAt, item.FetchedAt)
}

func TestParseEntry_Malformed(t *testing.T) {
	t.Parallel()

	html := `
	<dl>
	  <dt><span class="list-identifier"><a href="/abs/1234.56789">arXiv:1234.56789</a></span></dt>
	  <dd>
	    <div class="list-date">Date: 8 Nov 2025</div>
	    <p class="mathjax">Abstract: no title here.</p>
	  </dd>
	</dl>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	_, err = parseEntry(doc.Find("dt").First(), doc.Find("dd").First(), time.Now().UTC())
	require.Error(t, err)

	var parseErr *domain.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestArxivScannerScan_SinceExcludesOlderEntries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<dl>
		  <dt>
		    <span class="list-identifier"><a href="/abs/2501.00001">arXiv:2501.00001</a></span>
		  </dt>
		  <dd>
		    <div class="list-date">Date: 8 Nov 2025</div>
		    <div class="list-title mathjax">Title: Fresh Paper</div>
		    <p class="mathjax">Abstract: brand new.</p>
		  </dd>
		  <dt>
		    <span class="list-identifier"><a href="/abs/2501.00002">arXiv:2501.00002</a></span>
		  </dt>
		  <dd>
		    <div class="list-date">Date: 6 Nov 2025</div>
		    <div class="list-title mathjax">Title: Old Paper</div>
		    <p class="mathjax">Abstract: older.</p>
		  </dd>
		</dl>`))
	}))
	defer server.Close()

	sc := NewArxivScanner(server.Client(), retry.Config{MaxAttempts: 1}, nil)
	sc.pageSize = 10

	since := time.Date(2025, time.November, 7, 0, 0, 0, 0, time.UTC)
	req := scanner.Request{
		Since:    &since,
		SiteName: "arxiv-default",
		Categories: []scanner.Category{
			{Name: "cs.AI", URL: server.URL + "/list/cs.AI/recent"},
		},
	}

	items, err := sc.Scan(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, items, 1, "entries older than the lower bound stop the scan")
	assert.Equal(t, "2501.00001", items[0].ID)
	assert.Equal(t, "brand new.", items[0].FullText)
}

func TestArxivScannerScan_NoSinceCollectsWholePage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<dl>
		  <dt>
		    <span class="list-identifier"><a href="/abs/2501.00001">arXiv:2501.00001</a></span>
		  </dt>
		  <dd>
		    <div class="list-date">Date: 8 Nov 2025</div>
		    <div class="list-title mathjax">Title: First Paper</div>
		    <p class="mathjax">Abstract: one.</p>
		  </dd>
		  <dt>
		    <span class="list-identifier"><a href="/abs/2501.00002">arXiv:2501.00002</a></span>
		  </dt>
		  <dd>
		    <div class="list-date">Date: 6 Nov 2025</div>
		    <div class="list-title mathjax">Title: Second Paper</div>
		    <p class="mathjax">Abstract: two.</p>
		  </dd>
		</dl>`))
	}))
	defer server.Close()

	sc := NewArxivScanner(server.Client(), retry.Config{MaxAttempts: 1}, nil)
	sc.pageSize = 10

	req := scanner.Request{
		SiteName: "arxiv-default",
		Categories: []scanner.Category{
			{Name: "cs.AI", URL: server.URL + "/list/cs.AI/recent"},
		},
	}

	items, err := sc.Scan(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2501.00001", items[0].ID)
	assert.Equal(t, "2501.00002", items[1].ID)
}

func TestArxivScannerScan_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := NewArxivScanner(server.Client(), retry.Config{MaxAttempts: 1}, nil)
	req := scanner.Request{
		SiteName:   "arxiv-default",
		Categories: []scanner.Category{{Name: "cs.AI", URL: server.URL}},
	}

	_, err := sc.Scan(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cs.AI")
}
