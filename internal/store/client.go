package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
)

var tracer = otel.Tracer("github.com/mercala-commerce/catalog-sync/internal/store")

const (
	pathCategories = "products/categories"
	pathProducts   = "products"

	defaultTimeout = 30 * time.Second
)

// Config holds the storefront API root and consumer credentials.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
}

// ClientDeps bundles constructor inputs for the store client.
type ClientDeps struct {
	Config     Config
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the storefront's REST API: category search/create/update
// and product lookup/create/update. Requests authenticate with the consumer
// key/secret pair over basic auth.
type Client struct {
	baseURL string
	cfg     Config
	http    *http.Client
	logger  *zap.Logger
}

// NewClient validates the configuration and constructs a store client.
func NewClient(deps ClientDeps) (*Client, error) {
	cfg := deps.Config
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("store: base url is required")
	}
	if strings.TrimSpace(cfg.ConsumerKey) == "" || strings.TrimSpace(cfg.ConsumerSecret) == "" {
		return nil, errors.New("store: consumer credentials are required")
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		cfg:     cfg,
		http:    httpClient,
		logger:  logger,
	}, nil
}

// SearchCategories finds categories whose name matches the query. The match
// is the store's own search semantics (substring, best match first), not
// exact equality.
func (c *Client) SearchCategories(ctx context.Context, name string) ([]domain.Category, error) {
	query := url.Values{"search": []string{name}}
	var categories []domain.Category
	if err := c.do(ctx, http.MethodGet, pathCategories, query, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates a category under the given parent.
func (c *Client) CreateCategory(ctx context.Context, name string, parent int64) (domain.Category, error) {
	body := map[string]any{"name": name, "parent": parent}
	var created domain.Category
	if err := c.do(ctx, http.MethodPost, pathCategories, nil, body, &created); err != nil {
		return domain.Category{}, err
	}
	return created, nil
}

// UpdateCategoryParent moves an existing category under the given parent.
func (c *Client) UpdateCategoryParent(ctx context.Context, id int64, parent int64) (domain.Category, error) {
	body := map[string]any{"parent": parent}
	var updated domain.Category
	if err := c.do(ctx, http.MethodPut, pathCategories+"/"+strconv.FormatInt(id, 10), nil, body, &updated); err != nil {
		return domain.Category{}, err
	}
	return updated, nil
}

// ProductsBySKU returns the products carrying the given sku. The sku is
// expected to be unique; callers treat additional matches as an anomaly.
func (c *Client) ProductsBySKU(ctx context.Context, sku string) ([]domain.Product, error) {
	query := url.Values{"sku": []string{sku}}
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, pathProducts, query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product from the given payload.
func (c *Client) CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error) {
	var created domain.Product
	if err := c.do(ctx, http.MethodPost, pathProducts, nil, input, &created); err != nil {
		return domain.Product{}, err
	}
	return created, nil
}

// UpdateProduct rewrites the product with the given id from the payload.
func (c *Client) UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (domain.Product, error) {
	var updated domain.Product
	if err := c.do(ctx, http.MethodPut, pathProducts+"/"+strconv.FormatInt(id, 10), nil, input, &updated); err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	ctx, span := tracer.Start(ctx, "store "+method+" /"+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", "/"+path),
		),
	)
	defer span.End()

	endpoint := c.baseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("store: encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("store: build %s %s request: %w", method, path, err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("store: %s %s: %w", method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeAPIError(resp)
		span.SetStatus(codes.Error, apiErr.Error())
		c.logger.Debug("store request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("store: decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Message
	}
	return apiErr
}
