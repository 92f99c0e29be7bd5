package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"meetscribe/internal/config"
	"meetscribe/internal/fileutil"
	"meetscribe/internal/logging"
	"meetscribe/internal/media"
	"meetscribe/internal/services"
)

// Cache stores raw API responses between runs.
type Cache interface {
	Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, bool, error)
	Put(ctx context.Context, key string, body []byte) error
}

// Client talks to the Internet Archive search, metadata, and download APIs.
type Client struct {
	baseURL        string
	accessKey      string
	secretKey      string
	rows           int
	httpClient     *http.Client
	downloadClient *http.Client
	cache          Cache
	cacheTTL       time.Duration
	logger         *slog.Logger

	mu    sync.Mutex
	items map[string]*itemRecord
}

var _ media.Resolver = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the client used for search and metadata requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithDownloadClient overrides the client used for file downloads.
func WithDownloadClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.downloadClient = client
		}
	}
}

// WithCache enables response caching for search and metadata requests.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if cache != nil && ttl > 0 {
			c.cache = cache
			c.cacheTTL = ttl
		}
	}
}

// WithSearchRows sets the page size for search requests.
func WithSearchRows(rows int) Option {
	return func(c *Client) {
		if rows > 0 {
			c.rows = rows
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates an archive client.
func New(accessKey, secretKey, baseURL string, opts ...Option) (*Client, error) {
	accessKey = strings.TrimSpace(accessKey)
	secretKey = strings.TrimSpace(secretKey)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("archive access and secret keys required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("archive base url required")
	}
	client := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		accessKey:      accessKey,
		secretKey:      secretKey,
		rows:           100,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		downloadClient: &http.Client{},
		items:          make(map[string]*itemRecord),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "archive")
	return client, nil
}

// NewFromConfig builds a client from the [archive] section.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	a := cfg.Archive
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: time.Duration(a.RequestTimeout) * time.Second}),
		WithDownloadClient(&http.Client{Timeout: time.Duration(a.DownloadTimeout) * time.Second}),
		WithSearchRows(a.SearchRows),
	}
	return New(a.AccessKey, a.SecretKey, a.BaseURL, append(base, opts...)...)
}

// DetailsURL returns the canonical page of an item.
func (c *Client) DetailsURL(identifier string) string {
	return c.baseURL + "/details/" + url.PathEscape(identifier)
}

type searchResponse struct {
	Response struct {
		NumFound int `json:"numFound"`
		Docs     []struct {
			Identifier string `json:"identifier"`
		} `json:"docs"`
	} `json:"response"`
}

// Search returns every identifier matching query, paging through results.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	var ids []string
	seen := make(map[string]struct{})
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("q", query)
		params.Add("fl[]", "identifier")
		params.Add("sort[]", "date asc")
		params.Set("rows", strconv.Itoa(c.rows))
		params.Set("page", strconv.Itoa(page))
		params.Set("output", "json")

		var payload searchResponse
		if err := c.getJSON(ctx, "/advancedsearch.php?"+params.Encode(), &payload); err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}
		docs := payload.Response.Docs
		for _, doc := range docs {
			if doc.Identifier == "" {
				continue
			}
			if _, ok := seen[doc.Identifier]; ok {
				continue
			}
			seen[doc.Identifier] = struct{}{}
			ids = append(ids, doc.Identifier)
		}
		if len(docs) == 0 || page*c.rows >= payload.Response.NumFound {
			break
		}
	}
	c.logger.Debug("archive search complete", logging.String("query", query), logging.Int("result_count", len(ids)))
	return ids, nil
}

// Ping issues an uncached zero-row search to confirm the API is reachable
// and accepts the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("q", "mediatype:movies")
	params.Add("fl[]", "identifier")
	params.Set("rows", "0")
	params.Set("output", "json")

	req, err := c.newRequest(ctx, c.baseURL+"/advancedsearch.php?"+params.Encode())
	if err != nil {
		return err
	}
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return statusError("ping", resp.StatusCode, latency)
	}
	return nil
}

// Metadata returns the canonical URL, title, and date of an item.
func (c *Client) Metadata(ctx context.Context, identifier string) (media.Metadata, error) {
	item, err := c.item(ctx, identifier)
	if err != nil {
		return media.Metadata{}, err
	}
	return media.Metadata{
		URL:   c.DetailsURL(identifier),
		Title: string(item.Metadata.Title),
		Date:  string(item.Metadata.Date),
	}, nil
}

// PreferredFile returns the first listed file whose format matches one of
// formats, compared case-insensitively.
func (c *Client) PreferredFile(ctx context.Context, identifier string, formats []string) (string, error) {
	item, err := c.item(ctx, identifier)
	if err != nil {
		return "", err
	}
	wanted := make(map[string]struct{}, len(formats))
	for _, f := range formats {
		wanted[strings.ToLower(strings.TrimSpace(f))] = struct{}{}
	}
	for _, file := range item.Files {
		if _, ok := wanted[strings.ToLower(strings.TrimSpace(file.Format))]; ok && file.Name != "" {
			return file.Name, nil
		}
	}
	return "", fmt.Errorf("%s (formats %s): %w", identifier, strings.Join(formats, ", "), media.ErrNoPreferredFile)
}

// Download streams a file of an item to dest.
func (c *Client) Download(ctx context.Context, identifier, fileName, dest string) error {
	segments := strings.Split(fileName, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	endpoint := c.baseURL + "/download/" + url.PathEscape(identifier) + "/" + strings.Join(segments, "/")

	req, err := c.newRequest(ctx, endpoint)
	if err != nil {
		return err
	}
	requestStart := time.Now()
	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", fileName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError("download", resp.StatusCode, time.Since(requestStart))
	}

	written, err := fileutil.WriteStream(dest, resp.Body)
	if err != nil {
		return fmt.Errorf("download %s: %w", fileName, err)
	}
	c.logger.Info("video downloaded",
		logging.String(logging.FieldIdentifier, identifier),
		logging.String("file_name", fileName),
		logging.Int64("bytes", written),
		logging.Duration("duration", time.Since(requestStart)),
	)
	return nil
}

type itemRecord struct {
	Metadata struct {
		Title flexString `json:"title"`
		Date  flexString `json:"date"`
	} `json:"metadata"`
	Files []struct {
		Name   string `json:"name"`
		Format string `json:"format"`
	} `json:"files"`
}

func (c *Client) item(ctx context.Context, identifier string) (*itemRecord, error) {
	c.mu.Lock()
	cached, ok := c.items[identifier]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	var record itemRecord
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/metadata/"+url.PathEscape(identifier), &raw); err != nil {
		return nil, fmt.Errorf("metadata %s: %w", identifier, err)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("{}")) {
		return nil, services.Wrap(services.ErrNotFound, "resolve", "metadata", "archive has no item "+identifier, nil)
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", identifier, err)
	}

	c.mu.Lock()
	c.items[identifier] = &record
	c.mu.Unlock()
	return &record, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	endpoint := c.baseURL + path
	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, endpoint, c.cacheTTL)
		if err != nil {
			c.logger.Debug("response cache read failed", logging.Error(err))
		} else if ok {
			if err := json.Unmarshal(body, dst); err == nil {
				return nil
			}
		}
	}

	req, err := c.newRequest(ctx, endpoint)
	if err != nil {
		return err
	}
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError("request", resp.StatusCode, latency)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode archive response: %w", err)
	}
	if c.cache != nil {
		if err := c.cache.Put(ctx, endpoint, body); err != nil {
			c.logger.Debug("response cache write failed", logging.Error(err))
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "LOW "+c.accessKey+":"+c.secretKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func statusError(op string, status int, latency time.Duration) error {
	err := fmt.Errorf("archive %s returned %d (latency=%v)", op, status, latency)
	if status == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, "", op, "", err)
	}
	return err
}

// flexString accepts a JSON string or an array of strings; archive metadata
// fields may be either.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("metadata field: %w", err)
	}
	*f = flexString(strings.Join(list, "; "))
	return nil
}
