// Package client is a typed wrapper around the portfolio HTTP API. Inputs are
// validated with the same rules the server applies before any request is sent.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/contact"
	"folio/logging"
	"folio/models"
	"folio/validation"
)

const (
	DefaultBaseURL = "http://localhost:3001"
	DefaultVersion = "v1"
	DefaultTimeout = 10 * time.Second
)

var ErrUnauthorized = errors.New("unauthorized")

// Config selects the API the client talks to. An empty Version talks to the
// unversioned /api prefix.
type Config struct {
	BaseURL    string
	Version    string
	Timeout    time.Duration
	TokenKey   string
	SessionKey string
}

func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Version:    DefaultVersion,
		Timeout:    DefaultTimeout,
		TokenKey:   "cv_api_token",
		SessionKey: "cv_api_session",
	}
}

// Refresher obtains a fresh token when the stored one has expired.
type Refresher func(ctx context.Context) (string, error)

// APIError is a non-2xx response. Code is the response's error field.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []models.FieldViolation
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Code)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type Client struct {
	cfg     Config
	http    *http.Client
	tokens  TokenStore
	refresh Refresher
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

func WithRefresher(r Refresher) Option {
	return func(c *Client) { c.refresh = r }
}

func New(cfg Config, opts ...Option) *Client {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.TokenKey == "" {
		cfg.TokenKey = defaults.TokenKey
	}
	if cfg.SessionKey == "" {
		cfg.SessionKey = defaults.SessionKey
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		tokens: NewMemoryTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens exposes the store so callers can log in or out.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

func (c *Client) endpoint(path string) string {
	base := c.cfg.BaseURL + "/api"
	if c.cfg.Version != "" {
		base += "/" + c.cfg.Version
	}
	return base + path
}

// ListProjects validates f locally, then fetches one page of projects.
// Build f from models.DefaultQueryFilter so unset fields keep their defaults.
func (c *Client) ListProjects(ctx context.Context, f models.QueryFilter) (*models.ProjectsResponse, error) {
	query := validation.EncodeProjectQuery(f)
	if _, err := validation.ParseProjectQuery(query); err != nil {
		return nil, err
	}

	var out models.ProjectsResponse
	if err := c.do(ctx, http.MethodGet, "/projects", query, nil, &out); err != nil {
		return nil, err
	}
	out.Data = displayable(out.Data)
	return &out, nil
}

// GetProject fetches one project. A row that is not display ready is
// reported as an error.
func (c *Client) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var out models.ProjectResponse
	if err := c.do(ctx, http.MethodGet, "/projects/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	if err := out.Data.Validate(); err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	return &out.Data, nil
}

// displayable drops rows missing a title or description.
func displayable(projects []models.Project) []models.Project {
	kept := projects[:0]
	for _, p := range projects {
		if err := p.Validate(); err != nil {
			logging.Warn().
				Str("project_id", p.ID.String()).
				Err(err).
				Msg("Dropping project that is not display ready")
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func (c *Client) ProjectStats(ctx context.Context) (*models.StatsResponse, error) {
	var out models.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/projects/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var out models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendContact sanitizes and validates req before posting it.
func (c *Client) SendContact(ctx context.Context, req models.ContactRequest) (*models.ContactResponse, error) {
	m := &models.ContactMessage{Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message}
	m.Sanitize()
	if err := contact.Validate(m, contact.DefaultRules()); err != nil {
		return nil, err
	}

	body := models.ContactRequest{Name: m.Name, Email: m.Email, Subject: m.Subject, Message: m.Message}
	var out models.ContactResponse
	if err := c.do(ctx, http.MethodPost, "/contact", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMessages(ctx context.Context, opts models.ContactListOptions) (*models.ContactListResponse, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		query.Set("limit", fmt.Sprint(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", fmt.Sprint(opts.Offset))
	}

	var out models.ContactListResponse
	if err := c.do(ctx, http.MethodGet, "/contact/messages", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMessage(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	var out models.ContactMessageResponse
	if err := c.do(ctx, http.MethodGet, "/contact/messages/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateMessageStatus(ctx context.Context, id uuid.UUID, status string) (*models.ContactMessage, error) {
	if err := validation.Var("status", status, "required,oneof=read replied spam"); err != nil {
		return nil, err
	}

	var out models.ContactMessageResponse
	body := models.StatusUpdateRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, "/contact/messages/"+id.String(), nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// bearer returns the token to attach, refreshing or clearing an expired one.
func (c *Client) bearer(ctx context.Context) (string, error) {
	token := c.tokens.Get()
	if token == "" {
		return "", nil
	}
	if !c.tokens.IsExpired() {
		return token, nil
	}

	if c.refresh == nil {
		return "", c.tokens.Clear()
	}
	fresh, err := c.refresh(ctx)
	if err != nil {
		_ = c.tokens.Clear()
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if err := c.tokens.Set(fresh); err != nil {
		return "", err
	}
	return fresh, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	start := time.Now()
	target := c.endpoint(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Error().
			Err(err).
			Str("method", method).
			Str("endpoint", path).
			Dur("duration", time.Since(start)).
			Msg("API request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp)
		logging.Error().
			Str("method", method).
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Str("error", apiErr.Code).
			Dur("duration", time.Since(start)).
			Msg("API error response")

		if resp.StatusCode == http.StatusUnauthorized {
			_ = c.tokens.Clear()
		}
		return apiErr
	}

	logging.Debug().
		Str("method", method).
		Str("endpoint", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API call")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}

	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return apiErr
	}
	if body.Error != "" {
		apiErr.Code = body.Error
	}
	apiErr.Message = body.Message
	apiErr.Details = body.Details
	return apiErr
}
