package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "dolfin/internal/errors"
)

const basiqVersion = "3.0"

// tokenRefreshSkew renews tokens slightly before the provider's expiry.
const tokenRefreshSkew = 60 * time.Second

// BasiqConfig holds the settings for the Basiq HTTP client.
type BasiqConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// BasiqTokenSource exchanges the API key for a server-access token and
// caches it until shortly before expiry.
type BasiqTokenSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewBasiqTokenSource creates a caching token source for the Basiq API.
func NewBasiqTokenSource(cfg BasiqConfig) *BasiqTokenSource {
	return &BasiqTokenSource{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Token returns a cached token, refreshing it from the provider when absent
// or close to expiry.
func (s *BasiqTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires.Add(-tokenRefreshSkew)) {
		return s.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/token", strings.NewReader("scope=SERVER_ACCESS"))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Authorization", "Basic "+s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("basiq-version", basiqVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.Wrap(apperrors.ErrRemoteUnavailable,
			fmt.Errorf("token endpoint returned status %d", resp.StatusCode))
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apperrors.Wrap(apperrors.ErrRemoteUnavailable, err)
	}
	if body.AccessToken == "" {
		return "", apperrors.Wrap(apperrors.ErrRemoteUnavailable,
			fmt.Errorf("token endpoint returned an empty token"))
	}

	s.token = body.AccessToken
	s.expires = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return s.token, nil
}

// BasiqClient implements Client against the Basiq HTTP API. It is safe for
// concurrent use and is constructed and passed explicitly; there is no
// process-wide client state.
type BasiqClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewBasiqClient creates a Basiq client with a caching token source derived
// from the config.
func NewBasiqClient(cfg BasiqConfig) *BasiqClient {
	return NewBasiqClientWithTokenSource(cfg, NewBasiqTokenSource(cfg))
}

// NewBasiqClientWithTokenSource creates a Basiq client with an injected
// token-refresh strategy.
func NewBasiqClientWithTokenSource(cfg BasiqConfig, tokens TokenSource) *BasiqClient {
	return &BasiqClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
	}
}

// CreateAccount registers the profile with the provider and returns the
// provider-assigned account id.
func (c *BasiqClient) CreateAccount(ctx context.Context, profile Profile) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/users", profile, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", apperrors.Wrap(apperrors.ErrRemoteUnavailable,
			fmt.Errorf("account creation response carried no id"))
	}
	return resp.ID, nil
}

// CreateAuthLink requests an account-linking URL for the given provider
// account and returns the public link.
func (c *BasiqClient) CreateAuthLink(ctx context.Context, providerAccountID string) (string, error) {
	var resp struct {
		Links struct {
			Public string `json:"public"`
		} `json:"links"`
	}
	path := "/users/" + url.PathEscape(providerAccountID) + "/auth_link"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return "", err
	}
	if resp.Links.Public == "" {
		return "", apperrors.Wrap(apperrors.ErrRemoteUnavailable,
			fmt.Errorf("auth link response carried no public URL"))
	}
	return resp.Links.Public, nil
}

// ListTransactions fetches a page of transactions for the provider account.
func (c *BasiqClient) ListTransactions(ctx context.Context, providerAccountID string, limit int, filter string) ([]Record, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if filter != "" {
		query.Set("filter", filter)
	}

	var resp struct {
		Data []Record `json:"data"`
	}
	path := "/users/" + url.PathEscape(providerAccountID) + "/transactions?" + query.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// doJSON performs an authenticated JSON round trip. Transport failures,
// non-2xx statuses, and unparseable bodies all surface as REMOTE_UNAVAILABLE.
func (c *BasiqClient) doJSON(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrRemoteUnavailable, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("basiq-version", basiqVersion)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable,
			fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode))
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return apperrors.Wrap(apperrors.ErrRemoteUnavailable, err)
		}
	}
	return nil
}
