package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heatparts/storefront/pkg/config"
	pkgerrors "github.com/heatparts/storefront/pkg/errors"
	"github.com/heatparts/storefront/pkg/logger"
	"github.com/heatparts/storefront/pkg/metrics"
)

const (
	restPrefix  = "/wp-json/wc/v3"
	storePrefix = "/wp-json/wc/store/v1"

	// CartTokenHeader carries the Store API session token in both directions.
	CartTokenHeader = "Cart-Token"

	defaultPerPage              = 50
	maxPerPage                  = 100
	defaultTimeout              = 15 * time.Second
	errorBodyReadLimit    int64 = 4096
	responseBodyReadLimit int64 = 8 << 20
)

// Client talks to the platform's signed REST API and its session-scoped Store API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	consumerKey    string
	consumerSecret string
	perPage        int
	metrics        *metrics.RemoteCallMetrics
	logg           *logger.Logger
	unavailable    error
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMetrics records call durations and failures.
func WithMetrics(m *metrics.RemoteCallMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger reports records skipped during response validation.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// NewClient validates the store configuration and builds a client.
func NewClient(cfg config.StoreConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		consumerKey:    strings.TrimSpace(cfg.ConsumerKey),
		consumerSecret: strings.TrimSpace(cfg.ConsumerSecret),
		perPage:        normalizePerPage(cfg.PerPage),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Unavailable returns a client whose every call fails with err. It lets the
// service start without store credentials and report the problem at first use.
func Unavailable(err error) *Client {
	if err == nil {
		err = pkgerrors.New(pkgerrors.CodeConfiguration, "store client not configured")
	}
	return &Client{perPage: defaultPerPage, unavailable: err}
}

// BaseURL returns the storefront origin, without a trailing slash.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

func normalizePerPage(n int) int {
	if n <= 0 {
		return defaultPerPage
	}
	if n > maxPerPage {
		return maxPerPage
	}
	return n
}

type call struct {
	endpoint  string
	method    string
	url       string
	query     url.Values
	body      any
	signed    bool
	cartToken string
}

// apiError is the platform's JSON error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}

// notFoundCodes are platform error codes that mean the addressed object does not exist.
var notFoundCodes = map[string]struct{}{
	"woocommerce_rest_cart_invalid_key":      {},
	"woocommerce_rest_cart_item_not_found":   {},
	"woocommerce_rest_invalid_id":            {},
	"woocommerce_rest_shop_order_invalid_id": {},
	"woocommerce_rest_product_invalid_id":    {},
}

func (c *Client) restURL(path string) string {
	return c.baseURL + restPrefix + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) storeURL(path string) string {
	return c.baseURL + storePrefix + "/" + strings.TrimLeft(path, "/")
}

// do executes the call and decodes a 2xx JSON body into out. The response
// headers are returned on success so Store API callers can read the token.
func (c *Client) do(ctx context.Context, cl call, out any) (http.Header, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "store client not configured")
	}
	if c.unavailable != nil {
		return nil, c.unavailable
	}

	start := time.Now()
	header, err := c.execute(ctx, cl, out)
	c.metrics.ObserveDuration(cl.endpoint, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(cl.endpoint)
		return nil, err
	}
	return header, nil
}

func (c *Client) execute(ctx context.Context, cl call, out any) (http.Header, error) {
	target := cl.url
	if len(cl.query) > 0 {
		target = target + "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("marshal %s request", cl.endpoint))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", cl.endpoint))
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.signed {
		req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	}
	if cl.cartToken != "" {
		req.Header.Set(CartTokenHeader, cl.cartToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", cl.endpoint))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(cl.endpoint, resp)
	}

	if out != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(out); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", cl.endpoint))
		}
	}
	return resp.Header, nil
}

func statusError(endpoint string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)

	details := map[string]any{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
	}
	if apiErr.Code != "" {
		details["platform_code"] = apiErr.Code
	}

	cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	_, knownMissing := notFoundCodes[apiErr.Code]
	if resp.StatusCode == http.StatusNotFound || knownMissing {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, fmt.Sprintf("%s: not found", endpoint)).WithDetails(details)
	}

	msg := fmt.Sprintf("%s request failed", endpoint)
	if apiErr.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, apiErr.Message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, msg).WithDetails(details)
}

func (c *Client) warnSkipped(ctx context.Context, kind string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.WarnErr(c.logg.WithField(ctx, "record", kind), "store.record_skipped", err)
}

// IsTokenRejected reports whether the Store API refused the presented cart token.
func IsTokenRejected(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		return false
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return false
	}
	if code, _ := details["platform_code"].(string); code == "woocommerce_rest_cart_token_invalid" {
		return true
	}
	status, _ := details["status"].(int)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
