package glowmarkt

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the default API endpoint.
	BaseURL = "https://api.glowmarkt.com/api/v0-1"
	// ApplicationID is the default application ID sent with every request.
	ApplicationID = "b0f1b774-a586-4f72-9edd-27ead8aa7a8d"
)

// Endpoint identifies an API deployment. A non-default endpoint is
// normally only useful for testing.
type Endpoint struct {
	BaseURL       string
	ApplicationID string
}

// DefaultEndpoint returns the production Glowmarkt endpoint.
func DefaultEndpoint() Endpoint {
	return Endpoint{
		BaseURL:       BaseURL,
		ApplicationID: ApplicationID,
	}
}

// Client provides access to the Glowmarkt API.
//
// Requests pass through a client-side rate limiter so that bulk
// collection cannot trip the API's own limits. Metadata listings
// (devices, resources, types) are cached in a small LRU since they
// change rarely and bulk collection requests them repeatedly; readings
// are never cached.
type Client struct {
	endpoint  Endpoint
	http      *http.Client
	logger    logrus.FieldLogger
	limiter   *rate.Limiter
	cache     *lru.Cache
	cacheSize int
	metrics   *Metrics
	validator requestValidator

	token  string
	expiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit sets the client-side request rate limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithMetadataCacheSize sets the LRU size for metadata responses. A
// size of zero disables caching entirely.
func WithMetadataCacheSize(size int) Option {
	return func(c *Client) { c.cacheSize = size }
}

// WithMetrics attaches Prometheus collectors recording request counts
// and latency.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithToken supplies an existing JWT token instead of authenticating.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the given endpoint.
func New(endpoint Endpoint, opts ...Option) (*Client, error) {
	c := &Client{
		endpoint:  endpoint,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    logrus.StandardLogger(),
		limiter:   rate.NewLimiter(5, 10),
		cacheSize: 128,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cacheSize > 0 {
		cache, err := lru.New(c.cacheSize)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}

	return c, nil
}

// Token returns the current JWT token, or an empty string before
// authentication.
func (c *Client) Token() string {
	return c.token
}

// TokenExpiry returns the expiry instant of the current token.
func (c *Client) TokenExpiry() time.Time {
	return c.expiry
}

// Authenticate exchanges a username and password for a JWT token that
// the client uses for all further requests.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "auth", nil, &authRequest{
		Username: username,
		Password: password,
	}, &resp, false)
	if err != nil {
		return err
	}

	if err := resp.validate(); err != nil {
		return err
	}

	c.token = resp.Token
	c.expiry = time.Unix(resp.Exp, 0).UTC()
	c.logger.WithField("expiry", c.expiry.Format(time.RFC3339)).Debug("authenticated with API")

	return nil
}

// Validate checks that the current token is still accepted and updates
// the known expiry.
func (c *Client) Validate(ctx context.Context) error {
	var resp authResponse
	if err := c.do(ctx, http.MethodGet, "auth", nil, nil, &resp, false); err != nil {
		return err
	}

	if err := resp.validate(); err != nil {
		return err
	}

	c.expiry = time.Unix(resp.Exp, 0).UTC()
	return nil
}

// DeviceTypes retrieves all known device types, keyed by ID.
func (c *Client) DeviceTypes(ctx context.Context) (map[string]DeviceType, error) {
	return getList(ctx, c, "devicetype", func(d DeviceType) string { return d.ID })
}

// Devices retrieves all devices registered for the account, keyed by ID.
func (c *Client) Devices(ctx context.Context) (map[string]Device, error) {
	return getList(ctx, c, "device", func(d Device) string { return d.ID })
}

// Device retrieves a single device, or nil if it does not exist.
func (c *Client) Device(ctx context.Context, id string) (*Device, error) {
	return getOne[Device](ctx, c, "device/"+id)
}

// VirtualEntities retrieves all virtual entities for the account,
// keyed by ID.
func (c *Client) VirtualEntities(ctx context.Context) (map[string]VirtualEntity, error) {
	return getList(ctx, c, "virtualentity", func(v VirtualEntity) string { return v.ID })
}

// VirtualEntity retrieves a single virtual entity, or nil if it does
// not exist.
func (c *Client) VirtualEntity(ctx context.Context, id string) (*VirtualEntity, error) {
	return getOne[VirtualEntity](ctx, c, "virtualentity/"+id)
}

// ResourceTypes retrieves all known resource types, keyed by ID.
func (c *Client) ResourceTypes(ctx context.Context) (map[string]ResourceType, error) {
	return getList(ctx, c, "resourcetype", func(r ResourceType) string { return r.ID })
}

// Resources retrieves all resources for the account, keyed by ID.
func (c *Client) Resources(ctx context.Context) (map[string]Resource, error) {
	return getList(ctx, c, "resource", func(r Resource) string { return r.ID })
}

// Resource retrieves a single resource, or nil if it does not exist.
func (c *Client) Resource(ctx context.Context, id string) (*Resource, error) {
	return getOne[Resource](ctx, c, "resource/"+id)
}

// LatestTariff retrieves the tariff currently applied to a resource.
func (c *Client) LatestTariff(ctx context.Context, resourceID string) ([]TariffData, error) {
	var resp latestTariffResponse
	if err := c.do(ctx, http.MethodGet, "resource/"+resourceID+"/tariff", nil, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// TariffList retrieves the historical tariffs for a resource.
func (c *Client) TariffList(ctx context.Context, resourceID string) ([]TariffListEntry, error) {
	var resp tariffListResponse
	if err := c.do(ctx, http.MethodGet, "resource/"+resourceID+"/tariff-list", nil, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// isoSeconds formats an instant at second resolution with no zone
// suffix, which is the only form the readings endpoint accepts.
func isoSeconds(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// Readings retrieves the readings for a resource over [start, end].
//
// The API misbehaves in the presence of non-UTC timezones so both
// bounds are converted to UTC before the request and all returned
// readings are in UTC. The span must not exceed the period's maximum;
// use SplitPeriods to break longer ranges up first.
func (c *Client) Readings(ctx context.Context, resourceID string, start, end time.Time, period ReadingPeriod) ([]Reading, error) {
	if err := c.validator.validateReadings(start, end, period); err != nil {
		return nil, err
	}

	periodArg, err := period.queryValue()
	if err != nil {
		return nil, err
	}

	from := start.UTC()
	to := end.UTC()

	c.logger.WithFields(logrus.Fields{
		"resource_id": resourceID,
		"from":        from.Format(time.RFC3339),
		"to":          to.Format(time.RFC3339),
		"period":      period.String(),
	}).Debug("requesting readings")

	query := url.Values{}
	query.Set("from", isoSeconds(from))
	query.Set("to", isoSeconds(to))
	query.Set("period", periodArg)
	query.Set("offset", "0")
	query.Set("function", "sum")

	var resp readingsResponse
	if err := c.do(ctx, http.MethodGet, "resource/"+resourceID+"/readings", query, nil, &resp, false); err != nil {
		return nil, err
	}

	return newReadings(resp.Data, period), nil
}

func getList[T any](ctx context.Context, c *Client, path string, id func(T) string) (map[string]T, error) {
	var list []T
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &list, true); err != nil {
		return nil, err
	}

	byID := make(map[string]T, len(list))
	for _, item := range list {
		byID[id(item)] = item
	}
	return byID, nil
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var item T
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &item, false); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// do performs one API request, optionally serving and populating the
// metadata cache, and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, cacheable bool) error {
	if cacheable && c.cache != nil {
		if cached, ok := c.cache.Get(path); ok {
			return decodeResponse(cached.([]byte), out)
		}
	}

	raw, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if cacheable && c.cache != nil {
		c.cache.Add(path, raw)
	}

	return decodeResponse(raw, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, newError(KindNetwork, "rate limiter: %s", err)
	}

	u := strings.TrimSuffix(c.endpoint.BaseURL, "/") + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, newError(KindClient, "encoding request body: %s", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, newError(KindClient, "building request: %s", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("applicationId", c.endpoint.ApplicationID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.token != "" {
		req.Header.Set("token", c.token)
	}

	c.logger.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	}).Debug("sending API request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(path, 0, time.Since(start))
		return nil, newError(KindNetwork, "%s", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.metrics.observe(path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, newError(KindNetwork, "reading response: %s", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"path":       path,
			"status":     resp.StatusCode,
			"request_id": requestID,
		}).Warn("received API error")
		return nil, newError(kindForStatus(resp.StatusCode), "request to %s returned status %d", path, resp.StatusCode)
	}

	return raw, nil
}

func decodeResponse(raw []byte, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return newError(KindResponse, "%s", err)
	}
	return nil
}
