package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/tango/internal/models"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://oauth.reddit.com"
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	permalinkHost  = "https://reddit.com"
	maxPageSize    = 100
)

// RedditSource searches Reddit with an application-only OAuth token.
type RedditSource struct {
	clientID     string
	clientSecret string
	userAgent    string
	baseURL      string
	authURL      string
	httpClient   *http.Client
	retry        RetryConfig
	logger       *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// RedditOption configures a RedditSource.
type RedditOption func(*RedditSource)

// WithBaseURL sets the API host, e.g. a test server.
func WithBaseURL(u string) RedditOption {
	return func(r *RedditSource) { r.baseURL = strings.TrimRight(u, "/") }
}

// WithAuthURL sets the token endpoint.
func WithAuthURL(u string) RedditOption {
	return func(r *RedditSource) { r.authURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) RedditOption {
	return func(r *RedditSource) { r.httpClient = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) RedditOption {
	return func(r *RedditSource) {
		if d > 0 {
			r.httpClient.Timeout = d
		}
	}
}

// WithRetry sets the backoff used for token and search requests.
func WithRetry(cfg RetryConfig) RedditOption {
	return func(r *RedditSource) { r.retry = cfg }
}

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) RedditOption {
	return func(r *RedditSource) { r.logger = l }
}

// NewRedditSource creates a source authenticated with the given application credentials.
func NewRedditSource(clientID, clientSecret, userAgent string, opts ...RedditOption) *RedditSource {
	r := &RedditSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		baseURL:      defaultBaseURL,
		authURL:      defaultAuthURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		retry:        DefaultRetryConfig(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string   `json:"kind"`
			Data linkData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type linkData struct {
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	Subreddit  string  `json:"subreddit"`
	CreatedUTC float64 `json:"created_utc"`
}

// Fetch pages through search results until req.Limit posts are collected or results run out.
func (r *RedditSource) Fetch(ctx context.Context, req models.SearchRequest) ([]models.Post, error) {
	if req.Query == "" {
		return nil, models.NewInvalidInputError("query", "must not be empty")
	}
	if req.Limit <= 0 {
		return nil, models.NewInvalidInputError("limit", "must be positive, got %d", req.Limit)
	}
	subreddit := req.Subreddit
	if subreddit == "" {
		subreddit = "all"
	}

	posts := make([]models.Post, 0, req.Limit)
	after := ""
	for len(posts) < req.Limit {
		page := req.Limit - len(posts)
		if page > maxPageSize {
			page = maxPageSize
		}
		params := url.Values{}
		params.Set("q", req.Query)
		params.Set("limit", strconv.Itoa(page))
		params.Set("restrict_sr", strconv.FormatBool(subreddit != "all"))
		params.Set("raw_json", "1")
		if req.Sort != "" {
			params.Set("sort", req.Sort)
		}
		if req.TimeFilter != "" {
			params.Set("t", req.TimeFilter)
		}
		if after != "" {
			params.Set("after", after)
		}

		var l listing
		err := retry(ctx, r.logger, "reddit search", r.retry, func() error {
			return r.search(ctx, subreddit, params, &l)
		})
		if err != nil {
			return nil, err
		}

		for _, child := range l.Data.Children {
			if child.Kind != "" && child.Kind != "t3" {
				continue
			}
			posts = append(posts, toPost(child.Data))
			if len(posts) == req.Limit {
				break
			}
		}
		r.logger.Debug("fetched page",
			zap.String("subreddit", subreddit),
			zap.Int("page_size", len(l.Data.Children)),
			zap.Int("total", len(posts)),
		)
		if l.Data.After == "" || len(l.Data.Children) == 0 {
			break
		}
		after = l.Data.After
	}
	return posts, nil
}

func (r *RedditSource) search(ctx context.Context, subreddit string, params url.Values, out *listing) error {
	token, err := r.accessToken(ctx)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/r/%s/search?%s", r.baseURL, url.PathEscape(subreddit), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return r.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		r.invalidateToken()
	}
	if err := statusError(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return permanent(fmt.Errorf("failed to decode search response: %w", err))
	}
	return nil
}

// accessToken returns the cached token or requests a new one.
func (r *RedditSource) accessToken(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token != "" && time.Now().Before(r.tokenExpiry) {
		return r.token, nil
	}
	if r.clientID == "" || r.clientSecret == "" {
		return "", permanent(fmt.Errorf("reddit client id and secret required: %w", ErrUnauthorized))
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", permanent(fmt.Errorf("failed to create token request: %w", err))
	}
	req.SetBasicAuth(r.clientID, r.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", r.transportError(ctx, err)
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return "", err
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", permanent(fmt.Errorf("failed to decode token response: %w", err))
	}
	if tr.AccessToken == "" {
		return "", permanent(fmt.Errorf("empty access token: %w", ErrUnauthorized))
	}
	expiresIn := time.Duration(tr.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	if expiresIn > 2*time.Minute {
		// refresh a minute before expiry
		expiresIn -= time.Minute
	}
	r.token = tr.AccessToken
	r.tokenExpiry = time.Now().Add(expiresIn)
	r.logger.Debug("obtained access token", zap.Duration("expires_in", expiresIn))
	return r.token, nil
}

func (r *RedditSource) invalidateToken() {
	r.mu.Lock()
	r.token = ""
	r.mu.Unlock()
}

func (r *RedditSource) transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return permanent(ctx.Err())
	}
	return fmt.Errorf("request failed: %w", err)
}

// statusError maps a non-2xx response to an error. 429 and 5xx stay retryable.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return permanent(fmt.Errorf("%w: %v", ErrUnauthorized, err))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return err
	default:
		return permanent(err)
	}
}

func toPost(d linkData) models.Post {
	p := models.Post{
		Title:     d.Title,
		Body:      d.Selftext,
		URL:       permalinkHost + d.Permalink,
		Score:     d.Score,
		Subreddit: d.Subreddit,
	}
	if d.CreatedUTC > 0 {
		sec, frac := math.Modf(d.CreatedUTC)
		p.CreatedUTC = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return p
}
