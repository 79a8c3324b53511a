// Package shopapi is an HTTP client for the storefront's public API.
package shopapi

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

	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/charro/storefront/internal/infrastructure/logger"
	"github.com/charro/storefront/internal/storefront"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Client calls the storefront API. It is safe for concurrent use once configured.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for cfg.BaseURL
func New(cfg config.ClientConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Product is the catalog entry returned by the API
type Product struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	InStock     int             `json:"in_stock"`
	Price       decimal.Decimal `json:"price"`
	Sizes       []string        `json:"sizes"`
	Tags        []string        `json:"tags"`
	Type        string          `json:"type"`
	Gender      string          `json:"gender"`
}

// LoginResult holds the issued token and the user it belongs to
type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

// CreateOrder posts the cart snapshot and returns the new order id
func (c *Client) CreateOrder(ctx context.Context, req storefront.OrderRequest) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return "", err
	}
	id := data.Get("id").String()
	if id == "" {
		return "", fmt.Errorf("shopapi: order response has no id")
	}
	return id, nil
}

// GetProduct fetches a product by slug
func (c *Client) GetProduct(ctx context.Context, slug string) (*Product, error) {
	data, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, err
	}
	var p Product
	if err := json.Unmarshal([]byte(data.Raw), &p); err != nil {
		return nil, fmt.Errorf("shopapi: failed to decode product: %w", err)
	}
	return &p, nil
}

// ListProducts lists products, optionally for one gender
func (c *Client) ListProducts(ctx context.Context, gender string) ([]Product, error) {
	path := "/products"
	if gender != "" {
		path += "?gender=" + url.QueryEscape(gender)
	}
	return c.products(ctx, path)
}

// SearchProducts matches query against product titles and tags
func (c *Client) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	return c.products(ctx, "/search/"+url.PathEscape(query))
}

// Login exchanges credentials for a token and keeps it for later calls
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/user/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var res LoginResult
	if err := json.Unmarshal([]byte(data.Raw), &res); err != nil {
		return nil, fmt.Errorf("shopapi: failed to decode login response: %w", err)
	}
	c.token = res.Token
	return &res, nil
}

// Token returns the bearer token currently in use
func (c *Client) Token() string {
	return c.token
}

func (c *Client) products(ctx context.Context, path string) ([]Product, error) {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	products := []Product{}
	if data.Exists() && data.Raw != "null" {
		if err := json.Unmarshal([]byte(data.Raw), &products); err != nil {
			return nil, fmt.Errorf("shopapi: failed to decode products: %w", err)
		}
	}
	return products, nil
}

// do sends the request and returns the "data" member of a success envelope
func (c *Client) do(ctx context.Context, method, path string, body any) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("shopapi: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("shopapi: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("shopapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("shopapi: failed to read response: %w", err)
	}

	logger.WithLogger(ctx, c.logger).Debug("API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return gjson.Result{}, parseAPIError(resp.StatusCode, respBody)
	}
	if !gjson.ValidBytes(respBody) {
		return gjson.Result{}, fmt.Errorf("shopapi: response is not valid JSON")
	}

	parsed := gjson.ParseBytes(respBody)
	if ok := parsed.Get("success"); ok.Exists() && !ok.Bool() {
		return gjson.Result{}, parseAPIError(resp.StatusCode, respBody)
	}
	return parsed.Get("data"), nil
}

// Ensure Client implements OrderGateway
var _ storefront.OrderGateway = (*Client)(nil)
