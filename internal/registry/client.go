// Package registry implements a resilient client for the Jira Assets
// compatible HTTP registry: basic-auth transport, a TTL-bounded read cache,
// transparent pagination, and a rate-limit-aware retry protocol.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/northfleet/assetsync/pkg/assets"
	"github.com/northfleet/assetsync/pkg/errors"
)

const (
	// DefaultBaseURL is the hosted registry endpoint.
	DefaultBaseURL = "https://api.atlassian.com"

	// DefaultPageSize is how many objects an AQL page requests.
	DefaultPageSize = 50

	// DefaultCacheTTL bounds how long a read stays served from cache.
	DefaultCacheTTL = 5 * time.Minute

	// nearLimitCooldown is the pause inserted before the next request after
	// the registry signals it is approaching its rate limit.
	nearLimitCooldown = 1 * time.Second

	defaultHTTPTimeout = 30 * time.Second
)

// Config configures a Client.
type Config struct {
	BaseURL     string
	WorkspaceID string
	Username    string
	APIToken    string
	PageSize    int
	CacheTTL    time.Duration
	Retry       Policy
	HTTPClient  *http.Client
	Logger      *zerolog.Logger
}

// Client talks to the asset registry. It is safe for concurrent use; the
// read cache is shared across goroutines.
type Client struct {
	baseURL     string
	workspaceID string
	username    string
	apiToken    string
	pageSize    int
	retry       Policy
	http        *http.Client
	cache       *gocache.Cache
	logger      *zerolog.Logger

	// cooldownUntil delays the next request after a near-limit warning.
	mu            sync.Mutex
	cooldownUntil time.Time
}

// New creates a registry client from config, filling unset fields with
// defaults.
func New(cfg Config) (*Client, error) {
	if cfg.WorkspaceID == "" {
		return nil, errors.NewConfigError("registry", "workspace id is required", nil)
	}
	if cfg.Username == "" || cfg.APIToken == "" {
		return nil, errors.NewConfigError("registry", "credentials are required", errors.ErrCredentialsRequired)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Retry == (Policy{}) {
		cfg.Retry = DefaultPolicy()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		workspaceID: cfg.WorkspaceID,
		username:    cfg.Username,
		apiToken:    cfg.APIToken,
		pageSize:    cfg.PageSize,
		retry:       cfg.Retry,
		http:        cfg.HTTPClient,
		// Expired entries are evicted lazily on access; no background sweep.
		cache:  gocache.New(cfg.CacheTTL, 0),
		logger: cfg.Logger,
	}, nil
}

// objectURL builds the endpoint for a single object.
func (c *Client) objectURL(id string) string {
	return fmt.Sprintf("%s/jsm/assets/workspace/%s/v1/object/%s", c.baseURL, c.workspaceID, id)
}

// GetObject fetches an object by id, serving from the read cache when a
// fresh entry exists. A missing object returns (nil, nil): absence is a
// normal outcome, not an error. Callers get their own copy; mutating it
// does not touch the cached entry.
func (c *Client) GetObject(ctx context.Context, id string) (*assets.Object, error) {
	if cached, ok := c.cache.Get(id); ok {
		c.logger.Debug().Str("object_id", id).Msg("Object served from cache")
		obj := *cached.(*assets.Object)
		return &obj, nil
	}
	return c.fetchObject(ctx, id)
}

// GetObjectFresh fetches an object directly from the registry, bypassing and
// refreshing the cache. Reconciliation decisions and write verification use
// this so they never act on cached state.
func (c *Client) GetObjectFresh(ctx context.Context, id string) (*assets.Object, error) {
	return c.fetchObject(ctx, id)
}

func (c *Client) fetchObject(ctx context.Context, id string) (*assets.Object, error) {
	resp, err := c.do(ctx, http.MethodGet, c.objectURL(id), nil, nil)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	var obj assets.Object
	if err := decodeBody(resp, &obj); err != nil {
		return nil, errors.WrapResource("fetch", "object", id, err)
	}
	if obj.ObjectType.ID == "" {
		c.logger.Error().Str("object_id", id).Msg("Registry response missing object type")
		return nil, errors.NewAPIError(0, c.objectURL(id), "response missing object type")
	}

	stored := obj
	c.cache.SetDefault(id, &stored)
	return &obj, nil
}

// SearchObjects runs an AQL query and walks every page, returning the full
// accumulated result set. Callers never see partial pages.
func (c *Client) SearchObjects(ctx context.Context, aql string) ([]assets.Object, error) {
	endpoint := fmt.Sprintf("%s/jsm/assets/workspace/%s/v1/object/aql", c.baseURL, c.workspaceID)
	body := map[string]string{"qlQuery": aql}

	var all []assets.Object
	for startAt := 0; ; startAt += c.pageSize {
		params := url.Values{
			"startAt":           {strconv.Itoa(startAt)},
			"maxResults":        {strconv.Itoa(c.pageSize)},
			"includeAttributes": {"true"},
		}

		resp, err := c.do(ctx, http.MethodPost, endpoint+"?"+params.Encode(), body, nil)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, errors.NewNotFoundError("aql endpoint", endpoint)
		}

		var page assets.SearchResponse
		if err := decodeBody(resp, &page); err != nil {
			return nil, errors.WrapParse("json", "search response", err)
		}

		all = append(all, page.Values...)
		c.logger.Debug().
			Int("start_at", startAt).
			Int("page_size", len(page.Values)).
			Int("accumulated", len(all)).
			Msg("Fetched search page")

		if len(page.Values) < c.pageSize {
			return all, nil
		}
	}
}

// UpdateObject writes attribute values to an object and invalidates its
// cache entry.
func (c *Client) UpdateObject(ctx context.Context, id, objectTypeID string, attrs []assets.ObjectAttribute) error {
	payload := assets.UpdateRequest{
		Attributes:   attrs,
		ObjectTypeID: objectTypeID,
		AvatarUUID:   "",
		HasAvatar:    false,
	}

	resp, err := c.do(ctx, http.MethodPut, c.objectURL(id), payload, []int{http.StatusOK, http.StatusCreated})
	if err != nil {
		return errors.WrapResource("update", "object", id, err)
	}
	if resp == nil {
		return errors.NewNotFoundError("object", id)
	}
	drainBody(resp)

	c.cache.Delete(id)
	c.logger.Info().Str("object_id", id).Int("attributes", len(attrs)).Msg("Updated object")
	return nil
}

// VerifyUpdate re-reads an object after a write and compares each written
// attribute against the stored value. Mismatches are logged as warnings,
// never returned as errors: the registry is eventually consistent.
func (c *Client) VerifyUpdate(ctx context.Context, id string, want []assets.ObjectAttribute) {
	obj, err := c.GetObjectFresh(ctx, id)
	if err != nil || obj == nil {
		c.logger.Warn().Err(err).Str("object_id", id).Msg("Could not re-read object for verification")
		return
	}

	stored := obj.AttributeMap()
	for _, attr := range want {
		if len(attr.Values) == 0 {
			continue
		}
		wantValue := attr.Values[0].Value
		if got := stored[attr.ObjectTypeAttributeID]; got != wantValue {
			c.logger.Warn().
				Str("object_id", id).
				Str("attribute_id", attr.ObjectTypeAttributeID).
				Str("want", wantValue).
				Str("got", got).
				Msg("Verification mismatch after update")
		}
	}
}

// do performs one HTTP request under the retry policy. It returns a nil
// response for 404s so callers can treat absence as a value. Any other
// non-retryable status surfaces as an APIError; transient statuses are
// retried until the budget runs out, which yields a RetryExhaustedError.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, okStatuses []int) (*http.Response, error) {
	state := newRetryState(c.retry)
	var lastErr error

	for {
		if err := c.waitCooldown(ctx); err != nil {
			return nil, err
		}

		req, err := c.newRequest(ctx, method, endpoint, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			// Transport failures are not retryable; propagate without
			// consuming the budget.
			return nil, errors.WrapResource("execute", "request", method+" "+endpoint, err)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			drainBody(resp)
			return nil, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			hint := retryAfterHint(resp)
			if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
				c.logger.Warn().Str("reset", reset).Msg("Rate limit will reset")
			}
			drainBody(resp)
			lastErr = &errors.APIError{
				StatusCode: resp.StatusCode,
				Endpoint:   endpoint,
				Message:    "rate limit exceeded",
				RetryAfter: hint,
			}

		case resp.StatusCode >= http.StatusInternalServerError:
			hint := retryAfterHint(resp)
			drainBody(resp)
			lastErr = &errors.APIError{
				StatusCode: resp.StatusCode,
				Endpoint:   endpoint,
				Message:    "server error",
				RetryAfter: hint,
			}

		default:
			c.noteNearLimit(resp)
			if ok := statusAllowed(resp.StatusCode, okStatuses); !ok {
				message := readErrorBody(resp)
				return nil, errors.NewAPIError(resp.StatusCode, endpoint, message)
			}
			return resp, nil
		}

		if state.exhausted() {
			return nil, &errors.RetryExhaustedError{
				Attempts: state.policy.MaxRetries,
				Endpoint: endpoint,
				Err:      lastErr,
			}
		}

		var hint time.Duration = -1
		var apiErr *errors.APIError
		if errors.As(lastErr, &apiErr) && apiErr.RetryAfter > 0 {
			hint = apiErr.RetryAfter
		}
		wait := state.next(hint)

		c.logger.Warn().
			Err(lastErr).
			Dur("wait", wait).
			Int("attempt", state.attempt).
			Int("max_retries", state.policy.MaxRetries).
			Msg("Request failed, retrying")

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// newRequest builds an authenticated JSON request.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapParse("json", "request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+endpoint, err)
	}

	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// noteNearLimit schedules a cooldown before the next request when the
// registry warns it is approaching its quota. The cooldown sits outside the
// retry loop: the current response is still returned normally.
func (c *Client) noteNearLimit(resp *http.Response) {
	if resp.Header.Get("X-RateLimit-NearLimit") != "true" {
		return
	}
	c.logger.Warn().Msg("Approaching rate limit, delaying subsequent requests")
	c.mu.Lock()
	c.cooldownUntil = time.Now().Add(nearLimitCooldown)
	c.mu.Unlock()
}

// waitCooldown sleeps through any pending near-limit cooldown.
func (c *Client) waitCooldown(ctx context.Context) error {
	c.mu.Lock()
	wait := time.Until(c.cooldownUntil)
	c.mu.Unlock()
	return sleep(ctx, wait)
}

func statusAllowed(status int, okStatuses []int) bool {
	if okStatuses == nil {
		return status == http.StatusOK
	}
	for _, ok := range okStatuses {
		if status == ok {
			return true
		}
	}
	return false
}

// decodeBody decodes a JSON response body and closes it.
func decodeBody(resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}

// readErrorBody returns a truncated response body for error messages.
func readErrorBody(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if err != nil {
		return ""
	}
	return string(data)
}

// drainBody discards and closes a response body so the connection can be
// reused.
func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
