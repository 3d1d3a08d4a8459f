package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mercala-commerce/catalog-sync/internal/domain"
)

const (
	headerUserEmail = "X-User-Email"
	headerUserToken = "X-User-Token"

	defaultTimeout = 60 * time.Second
)

// Config holds the feed endpoint and its static header credentials.
type Config struct {
	URL   string
	Email string
	Token string
}

// ClientDeps bundles constructor inputs for the feed client.
type ClientDeps struct {
	Config     Config
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client reads the full source catalog in a single authenticated GET.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient validates the configuration and constructs a feed client.
func NewClient(deps ClientDeps) (*Client, error) {
	cfg := deps.Config
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("feed: endpoint url is required")
	}
	if strings.TrimSpace(cfg.Email) == "" || strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("feed: credentials are required")
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{cfg: cfg, http: httpClient, logger: logger}, nil
}

// FetchCatalog retrieves and decodes the nested source catalog. Any failure
// here is fatal to the run that requested it.
func (c *Client) FetchCatalog(ctx context.Context) (domain.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: build request: %w", err)
	}
	req.Header.Set(headerUserEmail, c.cfg.Email)
	req.Header.Set(headerUserToken, c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch catalog: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: unexpected status %d from %s", resp.StatusCode, c.cfg.URL)
	}

	var catalog domain.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("feed: decode catalog: %w", err)
	}

	items := 0
	for _, category := range catalog {
		items += len(category)
	}
	c.logger.Debug("catalog decoded", zap.Int("categories", len(catalog)), zap.Int("items", items))

	return catalog, nil
}
