package nexrad

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/radar-loop/internal/domain"
	"github.com/couchcryptid/radar-loop/internal/observability"
)

// Client lists and fetches Level III scan objects from the Unidata mirror
// bucket. It implements pipeline.Lister and pipeline.FetchDecoder.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a bucket client. baseURL must end with "/".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// ListRecentKeys returns the most recent count scan keys for the given
// station and date token, oldest first. When fewer than count scans exist for
// that day, all of them are returned; a day with no scans returns an empty
// sequence without error.
func (c *Client) ListRecentKeys(ctx context.Context, station, date string, count int) (domain.Chronological, error) {
	prefix := fmt.Sprintf("%s_%s", station, date)

	var keys []domain.ScanKey
	marker := ""
	for {
		page, err := c.listPage(ctx, prefix, marker)
		if err != nil {
			c.metrics.FetchErrors.Inc()
			return nil, err
		}
		for _, obj := range page.Contents {
			if strings.HasPrefix(obj.Key, prefix) {
				keys = append(keys, domain.ScanKey(obj.Key))
			}
		}
		if !page.IsTruncated || len(page.Contents) == 0 {
			break
		}
		// List API v1: without a delimiter there is no NextMarker element;
		// the next page starts after the last key returned.
		marker = page.NextMarker
		if marker == "" {
			marker = page.Contents[len(page.Contents)-1].Key
		}
	}

	recent := domain.NewChronological(keys).TrailingWindow(count)
	c.logger.Info("listed scans", "prefix", prefix, "available", len(keys), "selected", len(recent))
	return recent, nil
}

func (c *Client) listPage(ctx context.Context, prefix, marker string) (*listBucketResult, error) {
	params := url.Values{"prefix": {prefix}}
	if marker != "" {
		params.Set("marker", marker)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create listing request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list bucket: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("list bucket: status %d: %s", resp.StatusCode, body)
	}

	var page listBucketResult
	if err := xml.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode bucket listing: %w", err)
	}
	return &page, nil
}

// Fetch retrieves the raw bytes of one scan object.
func (c *Client) Fetch(ctx context.Context, key domain.ScanKey) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+string(key), nil)
	if err != nil {
		return nil, fmt.Errorf("create fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.FetchErrors.Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch %s: status %d: %s", key, resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	c.metrics.BytesFetched.Add(float64(len(data)))
	return data, nil
}

// FetchScan retrieves and decodes one scan.
func (c *Client) FetchScan(ctx context.Context, key domain.ScanKey) (domain.Scan, error) {
	data, err := c.Fetch(ctx, key)
	if err != nil {
		return domain.Scan{}, err
	}

	scan, err := Decode(data)
	if err != nil {
		c.metrics.DecodeErrors.Inc()
		return domain.Scan{}, fmt.Errorf("decode %s: %w", key, err)
	}
	scan.Key = key

	c.metrics.ScansFetched.Inc()
	c.logger.Info("fetched scan", "key", key, "bytes", len(data),
		"product", scan.ProductCode, "scan_time", scan.Time, "radials", len(scan.Field.Radials))
	return scan, nil
}

// S3 list API v1 response. Only the fields the resolver needs.

type listBucketResult struct {
	XMLName     xml.Name        `xml:"ListBucketResult"`
	IsTruncated bool            `xml:"IsTruncated"`
	NextMarker  string          `xml:"NextMarker"`
	Contents    []bucketContent `xml:"Contents"`
}

type bucketContent struct {
	Key string `xml:"Key"`
}
