package wallabag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wallabag_importer/internal/domain"
)

const SourceID = "wallabag"

var (
	ErrMissingToken = errors.New("token response has no access_token")
	ErrMissingItems = errors.New("entries response has no _embedded.items")
)

// wallabag serializes dates without the colon in the zone offset.
const wallabagTimeLayout = "2006-01-02T15:04:05-0700"

// Config holds wallabag client configuration.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Client talks to a wallabag instance. The instance URL is per call since it
// lives in the operator settings, not in process config.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// New creates a new wallabag client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		logger:    logger.With("source", SourceID),
	}
}

// Authenticate exchanges the stored credentials for a bearer token using the
// OAuth password grant.
func (c *Client) Authenticate(ctx context.Context, settings domain.Settings) (domain.Token, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {settings.ClientID},
		"client_secret": {settings.ClientSecret},
		"username":      {settings.User},
		"password":      {settings.Pass},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		endpoint(settings.Host, "/oauth/v2/token"), strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Token{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokenResp TokenResponse
	if err := c.do(req, &tokenResp); err != nil {
		return domain.Token{}, err
	}

	if tokenResp.AccessToken == "" {
		return domain.Token{}, ErrMissingToken
	}

	return domain.Token{
		AccessToken: tokenResp.AccessToken,
		ExpiresIn:   tokenResp.ExpiresIn,
	}, nil
}

// FetchEntries fetches a single page of entries.
func (c *Client) FetchEntries(ctx context.Context, host string, token domain.Token, params domain.FetchParams) ([]domain.Entry, error) {
	query := url.Values{}
	query.Set("perPage", strconv.Itoa(params.PerPage))
	if params.Tags != "" {
		query.Set("tags", params.Tags)
	}
	if params.Since != nil {
		query.Set("since", strconv.FormatInt(params.Since.Unix(), 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		endpoint(host, "/api/entries.json")+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	var entriesResp EntriesResponse
	if err := c.do(req, &entriesResp); err != nil {
		return nil, err
	}

	if entriesResp.Embedded == nil || entriesResp.Embedded.Items == nil {
		return nil, ErrMissingItems
	}

	c.logger.Debug("fetched entries",
		"count", len(*entriesResp.Embedded.Items),
		"total", entriesResp.Total,
	)

	return c.transform(*entriesResp.Embedded.Items), nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) transform(items []Item) []domain.Entry {
	entries := make([]domain.Entry, 0, len(items))

	for _, item := range items {
		createdAt, err := parseTime(item.CreatedAt)
		if err != nil {
			c.logger.Warn("failed to parse date",
				"entry_id", item.ID,
				"date", item.CreatedAt,
			)
		}

		entry := domain.Entry{
			ID:        item.ID,
			URL:       item.URL,
			Title:     item.Title,
			CreatedAt: createdAt,
		}

		for _, a := range item.Annotations {
			entry.Annotations = append(entry.Annotations, domain.Annotation{
				Text:  a.Text,
				Quote: a.Quote,
			})
		}

		entries = append(entries, entry)
	}

	return entries
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(wallabagTimeLayout, value)
}

func endpoint(host, path string) string {
	return strings.TrimRight(host, "/") + path
}
