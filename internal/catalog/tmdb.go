// Package catalog provides the remote movie catalog: a TMDB v3 client and an
// offline demo catalog.
package catalog

import (
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
	"time"

	"github.com/movienight/movienight/internal/config"
	"github.com/movienight/movienight/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "MovieNight/1.0"

	// PlaceholderPoster is shown when a movie has no poster.
	PlaceholderPoster = "https://via.placeholder.com/500x750.png?text=No+image"
)

// Client implements domain.Catalog against the TMDB v3 API
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	token        string
	language     string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a new TMDB API client
func NewClient(cfg config.TMDBConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		token:        cfg.Token,
		language:     cfg.Language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchPopular returns one page of popular movies
func (c *Client) FetchPopular(ctx context.Context, page int) ([]domain.MovieSummary, error) {
	query := url.Values{}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}

	var resp pageResponse
	if err := c.get(ctx, "/movie/popular", query, &resp); err != nil {
		return nil, err
	}
	return mapSummaries(resp.Results), nil
}

// FetchDetails returns the full record of one movie
func (c *Client) FetchDetails(ctx context.Context, id domain.MovieID) (*domain.MovieDetails, error) {
	if id == "" {
		return nil, domain.ErrInvalidMovie
	}

	var resp detailsDTO
	if err := c.get(ctx, "/movie/"+url.PathEscape(id.String()), nil, &resp); err != nil {
		return nil, err
	}
	return mapDetails(resp), nil
}

// Search returns movies matching query
func (c *Client) Search(ctx context.Context, query string, page int) ([]domain.MovieSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.MovieSummary{}, nil
	}

	params := url.Values{}
	params.Set("query", query)
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}

	var resp pageResponse
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	return mapSummaries(resp.Results), nil
}

// PosterURL returns the absolute poster URL for path
func (c *Client) PosterURL(path string) string {
	return PosterURL(c.imageBaseURL, path)
}

// PosterURL joins an image base URL and a poster path, falling back to the
// placeholder image when path is empty.
func PosterURL(base, path string) string {
	if path == "" {
		return PlaceholderPoster
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// get performs an authenticated GET and decodes the JSON body into out
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.token == "" && c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	if c.language != "" {
		query.Set("language", c.language)
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
			msg = apiErr.StatusMessage
		}
		c.logger.Error("tmdb request error", "path", path, "status", resp.StatusCode, "message", msg)
		return fmt.Errorf("%w: status %d: %s", domain.ErrNetwork, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("failed to parse tmdb response", "path", path, "error", err, "bodyLen", len(body))
		return fmt.Errorf("%w: %v", domain.ErrDeserialization, err)
	}
	return nil
}

// IsNetworkError reports whether err came from the transport or the server.
func IsNetworkError(err error) bool {
	return errors.Is(err, domain.ErrNetwork)
}
