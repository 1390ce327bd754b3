package xapi

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
	"time"

	"github.com/dghubble/oauth1"

	"TweetCleaner/internal/config"
	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

const (
	defaultBaseURL = "https://api.x.com"
	defaultTimeout = 15 * time.Second

	// X accepts max_results in [5, 100] on the user timeline endpoint.
	minPageSize = 5
	maxPageSize = 100
)

// Client is the X API v2 content source. It signs user-tier requests with
// OAuth 1.0a and sends the bearer token for app-tier reads.
type Client struct {
	baseURL string
	creds   config.XConfig
	base    *http.Client
	signed  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.ContentSource = (*Client)(nil)

// NewClient wires credentials and an HTTP client; a nil client gets defaults.
func NewClient(cfg config.XConfig, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	baseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		creds:   cfg,
		base:    client,
		timeout: timeout,
		logger:  logger,
	}
}

// Name identifies the source inside the registry.
func (c *Client) Name() string {
	return "x"
}

type userResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

type timelineResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
	Errors []apiError `json:"errors"`
}

type apiError struct {
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// Authenticate validates the requested credential tier and resolves the account.
// Missing credentials fail before any request is sent.
func (c *Client) Authenticate(ctx context.Context, tier domain.CredentialTier) (domain.Session, error) {
	session := domain.Session{Tier: tier}
	var path string

	switch tier {
	case domain.TierUser:
		if missing := c.creds.MissingUserCredentials(); len(missing) > 0 {
			return domain.Session{}, domain.AuthError("authenticate", "missing "+strings.Join(missing, ", "))
		}
		oauthCfg := oauth1.NewConfig(c.creds.ConsumerKey, c.creds.ConsumerSecret)
		token := oauth1.NewToken(c.creds.AccessToken, c.creds.AccessTokenSecret)
		signed := oauthCfg.Client(context.WithValue(context.Background(), oauth1.HTTPClient, c.base), token)
		signed.Timeout = c.base.Timeout
		c.signed = signed
		path = "/2/users/me"
	case domain.TierApp:
		if !c.creds.HasAppCredentials() {
			return domain.Session{}, domain.AuthError("authenticate", "missing TWITTER_BEARER_TOKEN")
		}
		if c.creds.Username == "" {
			return domain.Session{}, domain.AuthError("authenticate",
				"the app-level token cannot resolve the current user; set x.username or TWITTER_USERNAME")
		}
		path = "/2/users/by/username/" + url.PathEscape(c.creds.Username)
	default:
		return domain.Session{}, domain.AuthError("authenticate", fmt.Sprintf("unknown credential tier %q", tier))
	}

	var resp userResponse
	if err := c.do(ctx, session, "authenticate", http.MethodGet, path, nil, &resp); err != nil {
		return domain.Session{}, err
	}
	if resp.Data.ID == "" {
		return domain.Session{}, &domain.PlatformError{Kind: domain.ErrAuth, Op: "authenticate", Detail: firstError(resp.Errors, "user lookup returned no account")}
	}

	session.UserID = resp.Data.ID
	session.Username = resp.Data.Username
	c.debug("authenticated", "username", session.Username, "tier", tier)
	return session, nil
}

// FetchRecentPosts pages through the user timeline until limit posts are collected.
// A rate limit ends paging early without an error; whatever was gathered is returned.
func (c *Client) FetchRecentPosts(ctx context.Context, session domain.Session, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		return nil, nil
	}

	posts := make([]domain.Post, 0, limit)
	nextToken := ""

	for len(posts) < limit {
		query := url.Values{}
		query.Set("tweet.fields", "created_at,text")
		query.Set("max_results", strconv.Itoa(pageSize(limit-len(posts))))
		if nextToken != "" {
			query.Set("pagination_token", nextToken)
		}

		var page timelineResponse
		path := "/2/users/" + url.PathEscape(session.UserID) + "/tweets?" + query.Encode()
		if err := c.do(ctx, session, "fetch posts", http.MethodGet, path, nil, &page); err != nil {
			if errors.Is(err, domain.ErrRateLimit) {
				c.warn("rate limit reached while fetching posts", "error", err, "collected", len(posts))
				return posts, nil
			}
			return nil, err
		}

		for _, item := range page.Data {
			posts = append(posts, domain.Post{
				ID:        item.ID,
				Text:      item.Text,
				CreatedAt: parseTime(item.CreatedAt),
			})
		}
		c.debug("fetched page", "count", len(page.Data), "total", len(posts))

		if len(page.Data) == 0 || page.Meta.NextToken == "" {
			break
		}
		nextToken = page.Meta.NextToken
	}

	if len(posts) == 0 {
		c.info("platform reported no posts", "user", session.Username)
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// CreatePost publishes text and returns the new post ID.
func (c *Client) CreatePost(ctx context.Context, session domain.Session, text string) (string, error) {
	if !session.CanWrite() {
		return "", domain.AuthError("create post", "user-delegated credentials are required to post")
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
		Errors []apiError `json:"errors"`
	}
	if err := c.do(ctx, session, "create post", http.MethodPost, "/2/tweets", map[string]string{"text": text}, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", &domain.PlatformError{Kind: domain.ErrPlatform, Op: "create post", Detail: firstError(resp.Errors, "no id returned")}
	}
	return resp.Data.ID, nil
}

// DeletePost removes a post. It is the only call here besides CreatePost that mutates state.
func (c *Client) DeletePost(ctx context.Context, session domain.Session, postID string) error {
	if !session.CanWrite() {
		return domain.AuthError("delete post", "user-delegated credentials are required to delete")
	}

	var resp struct {
		Data struct {
			Deleted bool `json:"deleted"`
		} `json:"data"`
		Errors []apiError `json:"errors"`
	}
	if err := c.do(ctx, session, "delete post", http.MethodDelete, "/2/tweets/"+url.PathEscape(postID), nil, &resp); err != nil {
		return err
	}
	if !resp.Data.Deleted {
		return &domain.PlatformError{Kind: domain.ErrPlatform, Op: "delete post", Detail: firstError(resp.Errors, "platform did not confirm deletion")}
	}
	return nil
}

func (c *Client) do(ctx context.Context, session domain.Session, op, method, path string, payload any, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: marshal payload: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "TweetCleaner/1.0")

	client := c.base
	switch session.Tier {
	case domain.TierUser:
		if c.signed == nil {
			return domain.AuthError(op, "session is not authenticated")
		}
		client = c.signed
	case domain.TierApp:
		req.Header.Set("Authorization", "Bearer "+c.creds.BearerToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &domain.PlatformError{Kind: domain.ErrPlatform, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &domain.PlatformError{Kind: domain.ErrPlatform, Op: op, Detail: "decode response", Err: err}
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	perr := &domain.PlatformError{Op: op, Status: resp.StatusCode, Detail: errorDetail(raw)}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		perr.Kind = domain.ErrAuth
	case http.StatusForbidden:
		perr.Kind = domain.ErrPermission
	case http.StatusTooManyRequests:
		perr.Kind = domain.ErrRateLimit
		if reset, err := strconv.ParseInt(resp.Header.Get("x-rate-limit-reset"), 10, 64); err == nil {
			perr.ResetAt = time.Unix(reset, 0)
		}
	default:
		perr.Kind = domain.ErrPlatform
	}
	return perr
}

func errorDetail(raw []byte) string {
	var body struct {
		apiError
		Errors []apiError `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Detail != "" {
		return body.Detail
	}
	if body.Title != "" {
		return body.Title
	}
	return firstError(body.Errors, strings.TrimSpace(string(raw)))
}

func firstError(errs []apiError, fallback string) string {
	for _, e := range errs {
		switch {
		case e.Detail != "":
			return e.Detail
		case e.Message != "":
			return e.Message
		case e.Title != "":
			return e.Title
		}
	}
	return fallback
}

func pageSize(remaining int) int {
	if remaining < minPageSize {
		return minPageSize
	}
	if remaining > maxPageSize {
		return maxPageSize
	}
	return remaining
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
