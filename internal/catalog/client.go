package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

var (
	ErrGameNotFound = errors.New("game not found in global config")
	ErrFetch        = errors.New("failed to fetch catalog")
	ErrNoDetails    = errors.New("no file details returned")
)

// Client talks to the MMOUI API
type Client struct {
	client          *http.Client
	limiter         *rate.Limiter
	globalConfigURL string
	logger          *log.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithRateLimit throttles outgoing requests; rps <= 0 disables throttling
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(cl *Client) {
		if rps <= 0 {
			cl.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		cl.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithGlobalConfigURL overrides the discovery chain entry point
func WithGlobalConfigURL(url string) ClientOption {
	return func(cl *Client) {
		if url != "" {
			cl.globalConfigURL = url
		}
	}
}

// NewClient creates a new API client
func NewClient(logger *log.Logger, opts ...ClientOption) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:         rate.NewLimiter(rate.Limit(4), 2),
		globalConfigURL: GlobalConfigURL,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover walks global config -> game config
func (c *Client) Discover(ctx context.Context) (*GameConfig, error) {
	var global GlobalConfig
	if _, err := c.getJSON(ctx, c.globalConfigURL, &global); err != nil {
		return nil, err
	}

	var gameConfigURL string
	for _, g := range global.Games {
		if g.GameID == GameID {
			gameConfigURL = g.GameConfig
			break
		}
	}
	if gameConfigURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, GameID)
	}
	if gameConfigURL != DefaultGameConfigURL {
		c.logger.Warn("Game config URL changed", "url", gameConfigURL)
	}

	var gameConfig GameConfig
	if _, err := c.getJSON(ctx, gameConfigURL, &gameConfig); err != nil {
		return nil, err
	}

	if gameConfig.APIFeeds.FileList == "" {
		return nil, fmt.Errorf("%w: game config has no file list feed", ErrFetch)
	}
	if gameConfig.APIFeeds.FileList != DefaultFileListURL {
		c.logger.Warn("File list URL changed", "url", gameConfig.APIFeeds.FileList)
	}
	if gameConfig.APIFeeds.FileDetails != "" && gameConfig.APIFeeds.FileDetails != DefaultFileDetailsURL {
		c.logger.Warn("File details URL changed", "url", gameConfig.APIFeeds.FileDetails)
	}

	c.logger.Debug("Discovered game config",
		"file_list", gameConfig.APIFeeds.FileList,
		"file_details", gameConfig.APIFeeds.FileDetails,
	)

	return &gameConfig, nil
}

// FetchFileList downloads the raw file list document and decodes it.
// The raw body is returned so callers can cache it verbatim.
func (c *Client) FetchFileList(ctx context.Context, gc *GameConfig) ([]Entry, []byte, error) {
	var entries []Entry
	body, err := c.getJSON(ctx, gc.APIFeeds.FileList, &entries)
	if err != nil {
		return nil, nil, err
	}

	c.logger.Info("Fetched catalog", "entries", len(entries))
	return entries, body, nil
}

// FetchFileDetails returns the detail records for a catalog id
func (c *Client) FetchFileDetails(ctx context.Context, gc *GameConfig, id int) ([]FileDetails, error) {
	base := gc.APIFeeds.FileDetails
	if base == "" {
		base = DefaultFileDetailsURL
	}
	url := detailsURL(base, id)

	var details []FileDetails
	if _, err := c.getJSON(ctx, url, &details); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNoDetails, id)
	}
	return details, nil
}

// detailsURL builds the details URL; the feed is either a prefix or a
// template containing {0}
func detailsURL(base string, id int) string {
	sid := strconv.Itoa(id)
	if strings.Contains(base, "{0}") {
		return strings.ReplaceAll(base, "{0}", sid)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + sid + ".json"
}

// getJSON fetches url and decodes the body into v, returning the raw body
func (c *Client) getJSON(ctx context.Context, url string, v any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching", "url", url)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrFetch, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrFetch, url, err)
	}

	return body, nil
}
