package artifyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"artify/internal/entity"
	"artify/internal/httpx"
)

const (
	DefaultTimeout = 15 * time.Second
	DefaultRPS     = 10

	maxErrorBody = 4 << 10
)

type Config struct {
	BaseURL string
	// Timeout bounds every request, including reading the body.
	Timeout time.Duration
	// RPS caps outgoing requests per second. Zero means DefaultRPS.
	RPS int
	// Transport is the innermost round tripper. Nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the artify REST API. It never retries on its own; every
// retry in the application is user initiated.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = DefaultRPS
	}
	logger = logger.With("component", "artifyapi")

	transport := httpx.Chain(cfg.Transport,
		httpx.NewRateLimiter(float64(rps), rps).Transport,
		httpx.RequestIDTransport,
		httpx.AccessLogTransport(logger),
	)
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// ListArtworks fetches one page of public artworks.
func (c *Client) ListArtworks(ctx context.Context, page, limit int) (ArtworkPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var res ArtworkPage
	if err := c.do(ctx, http.MethodGet, "/allarts", q, nil, &res); err != nil {
		return ArtworkPage{}, err
	}
	return res, nil
}

func (c *Client) GetArtwork(ctx context.Context, id string) (entity.Artwork, error) {
	var res entity.Artwork
	if err := c.do(ctx, http.MethodGet, "/arts/"+url.PathEscape(id), nil, nil, &res); err != nil {
		return entity.Artwork{}, err
	}
	return res, nil
}

// CountByOwner returns how many artworks the account has submitted.
func (c *Client) CountByOwner(ctx context.Context, email string) (int, error) {
	var res countResponse
	if err := c.do(ctx, http.MethodGet, "/arts/count/"+url.PathEscape(email), nil, nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// Like records one like event and returns the authoritative like count.
func (c *Client) Like(ctx context.Context, id string) (int, error) {
	var res likeResponse
	if err := c.do(ctx, http.MethodPatch, "/arts/like/"+url.PathEscape(id), nil, nil, &res); err != nil {
		return 0, err
	}
	if !res.Success {
		return 0, fmt.Errorf("like %s: %w", id, ErrRejected)
	}
	return res.Likes, nil
}

// CreateArtwork submits a new artwork and returns its ID. The ID field of a is ignored.
func (c *Client) CreateArtwork(ctx context.Context, a entity.Artwork) (string, error) {
	a.ID = ""
	var res insertResponse
	if err := c.do(ctx, http.MethodPost, "/add-art", nil, a, &res); err != nil {
		return "", err
	}
	if res.InsertedID == "" {
		return "", fmt.Errorf("create artwork: %w", ErrRejected)
	}
	return res.InsertedID, nil
}

func (c *Client) ListOwned(ctx context.Context, email string) ([]entity.Artwork, error) {
	q := url.Values{}
	q.Set("email", email)

	var res []entity.Artwork
	if err := c.do(ctx, http.MethodGet, "/my-arts", q, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateArtwork sends the editable fields of an artwork. Owner fields, the
// like count and the creation time are never part of an update.
func (c *Client) UpdateArtwork(ctx context.Context, id string, patch ArtworkPatch) error {
	var res ack
	if err := c.do(ctx, http.MethodPatch, "/update-art/"+url.PathEscape(id), nil, patch, &res); err != nil {
		return err
	}
	if res.Acknowledged != nil && !*res.Acknowledged {
		return fmt.Errorf("update artwork %s: %w", id, ErrRejected)
	}
	return nil
}

func (c *Client) DeleteArtwork(ctx context.Context, id string) error {
	var res ack
	if err := c.do(ctx, http.MethodDelete, "/delete-art/"+url.PathEscape(id), nil, nil, &res); err != nil {
		return err
	}
	if res.Acknowledged != nil && !*res.Acknowledged {
		return fmt.Errorf("delete artwork %s: %w", id, ErrRejected)
	}
	return nil
}

func (c *Client) ListFavorites(ctx context.Context, email string) ([]entity.FavoriteRecord, error) {
	q := url.Values{}
	q.Set("email", email)

	var res []entity.FavoriteRecord
	if err := c.do(ctx, http.MethodGet, "/favorites", q, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// AddFavorite submits rec. A duplicate (email, artwork) pair is not an error;
// check AddFavoriteResult.AlreadyAdded.
func (c *Client) AddFavorite(ctx context.Context, rec entity.FavoriteRecord) (AddFavoriteResult, error) {
	rec.ID = ""
	var res insertResponse
	if err := c.do(ctx, http.MethodPost, "/favorites", nil, rec, &res); err != nil {
		return AddFavoriteResult{}, err
	}
	out := AddFavoriteResult{InsertedID: res.InsertedID, Message: res.Message}
	if out.InsertedID == "" && !out.AlreadyAdded() {
		return AddFavoriteResult{}, fmt.Errorf("add favorite: %w", ErrRejected)
	}
	return out, nil
}

// DeleteFavorite removes a favorite record and returns the deleted count.
func (c *Client) DeleteFavorite(ctx context.Context, id, email string) (int, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("id", id)

	var res deleteResponse
	if err := c.do(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(id), q, nil, &res); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *Client) Statistics(ctx context.Context) (entity.Statistics, error) {
	var res entity.Statistics
	if err := c.do(ctx, http.MethodGet, "/statistics", nil, nil, &res); err != nil {
		return entity.Statistics{}, err
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, target any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:  method,
			Path:    path,
			Code:    resp.StatusCode,
			Message: httpx.ErrorMessage(b),
			Body:    strings.TrimSpace(string(b)),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: read body: %w", ErrTransport, method, path, err)
	}
	if target == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		c.logger.Warn("undecodable response", "method", method, "path", path, "error", err)
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
