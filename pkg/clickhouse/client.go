package clickhouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Define static errors
var (
	ErrDestMustBePointerToSlice = errors.New("dest must be a pointer to a slice")
	ErrClickHouseResponse       = errors.New("clickhouse error")
)

// jsonResult is the FORMAT JSON envelope. Rows stay raw until decoded into
// the caller's type.
type jsonResult struct {
	Data json.RawMessage `json:"data"`
	Rows int             `json:"rows"`
}

// Params are bound to {name:Type} placeholders in a query
type Params map[string]string

// ClientInterface defines the methods for querying ClickHouse
type ClientInterface interface {
	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, params Params, dest interface{}) error
	// QueryMany executes a query and returns multiple results
	QueryMany(ctx context.Context, query string, params Params, dest interface{}) error
	// Execute runs a query and returns the raw response body
	Execute(ctx context.Context, query string, params Params) ([]byte, error)
	// Start initializes the client
	Start() error
	// Stop closes the client
	Stop() error
}

// client implements the ClientInterface using HTTP
type client struct {
	log          logrus.FieldLogger
	httpClient   *http.Client
	baseURL      string
	database     string
	debug        bool
	queryTimeout time.Duration
}

// NewClient creates a new HTTP-based ClickHouse client
func NewClient(logger logrus.FieldLogger, cfg *Config) (ClientInterface, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.SetDefaults()

	transport := &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     cfg.KeepAlive,
	}

	// Timeouts are per request, from the query context
	httpClient := &http.Client{Transport: transport}

	c := &client{
		log:          logger.WithField("component", "clickhouse-http"),
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		database:     cfg.Database,
		debug:        cfg.Debug,
		queryTimeout: cfg.QueryTimeout,
	}

	return c, nil
}

func (c *client) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.Execute(ctx, "SELECT 1", nil); err != nil {
		return fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	c.log.Info("Connected to ClickHouse HTTP interface")

	return nil
}

func (c *client) Stop() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}

	c.log.Info("Closed ClickHouse HTTP client")

	return nil
}

func (c *client) QueryOne(ctx context.Context, query string, params Params, dest interface{}) error {
	result, err := c.queryJSON(ctx, query, params)
	if err != nil {
		return err
	}

	if result.Rows == 0 {
		return nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(result.Data, &rows); err != nil {
		return fmt.Errorf("failed to parse rows: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	if err := json.Unmarshal(rows[0], dest); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return nil
}

func (c *client) QueryMany(ctx context.Context, query string, params Params, dest interface{}) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Slice {
		return ErrDestMustBePointerToSlice
	}

	result, err := c.queryJSON(ctx, query, params)
	if err != nil {
		return err
	}

	// Callers serialise rows straight to JSON, so no rows is [] not null
	if result.Rows == 0 || len(result.Data) == 0 {
		destValue.Elem().Set(reflect.MakeSlice(destValue.Elem().Type(), 0, 0))
		return nil
	}

	if err := json.Unmarshal(result.Data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal rows: %w", err)
	}

	return nil
}

func (c *client) Execute(ctx context.Context, query string, params Params) ([]byte, error) {
	body, err := c.executeHTTPRequest(ctx, query, params, false)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	return body, nil
}

func (c *client) queryJSON(ctx context.Context, query string, params Params) (*jsonResult, error) {
	formattedQuery := strings.TrimRight(strings.TrimSpace(query), ";") + " FORMAT JSON"

	resp, err := c.executeHTTPRequest(ctx, formattedQuery, params, true)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	var result jsonResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}

// requestURL appends settings and query parameters to the base URL. Reads
// run with readonly=2 so a templated query can never write, while still
// allowing per-request settings.
func (c *client) requestURL(params Params, readOnly bool, timeout time.Duration) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid ClickHouse URL: %w", err)
	}

	values := u.Query()
	values.Set("date_time_output_format", "iso")

	if readOnly {
		values.Set("readonly", "2")
	}

	if secs := int(timeout.Seconds()); secs > 0 {
		values.Set("max_execution_time", strconv.Itoa(secs))
	}

	if c.database != "" {
		values.Set("database", c.database)
	}

	for name, value := range params {
		values.Set("param_"+name, value)
	}

	u.RawQuery = values.Encode()

	return u.String(), nil
}

func (c *client) executeHTTPRequest(ctx context.Context, query string, params Params, readOnly bool) ([]byte, error) {
	timeout := c.getTimeout(ctx)

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint, err := c.requestURL(params, readOnly, timeout)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-ClickHouse-Format", "JSON")

	if c.debug {
		c.log.WithFields(logrus.Fields{
			"query":     query,
			"params":    params,
			"read_only": readOnly,
		}).Debug("Executing ClickHouse query")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WithError(closeErr).Debug("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp struct {
			Exception string `json:"exception"`
		}
		if jsonErr := json.Unmarshal(body, &errorResp); jsonErr == nil && errorResp.Exception != "" {
			return nil, fmt.Errorf("%w (status %d): %s", ErrClickHouseResponse, resp.StatusCode, errorResp.Exception)
		}
		return nil, fmt.Errorf("%w (status %d): %s", ErrClickHouseResponse, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if c.debug && len(body) < 1000 {
		c.log.WithField("response", string(body)).Debug("ClickHouse response")
	}

	return body, nil
}

func (c *client) getTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		return time.Until(deadline)
	}

	return c.queryTimeout
}
