package libcal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/instrumentation"
	"github.com/teemow/libfinder/internal/logging"
)

const (
	// DefaultBaseURL is the Delaware Libraries LibCal API.
	DefaultBaseURL = "https://delawarelibraries.libcal.com/api/1.1"

	// DefaultTimeout bounds every request, including token requests.
	DefaultTimeout = 30 * time.Second

	tokenPath = "/oauth/token"
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration

	// HTTPClient is the base client for token and API requests. Its transport is
	// wrapped with bearer authentication. Defaults to a client with Timeout.
	HTTPClient *http.Client

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Client calls the LibCal 1.1 API. It implements finder.Upstream.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

var _ finder.Upstream = (*Client)(nil)

// NewClient creates a client that authenticates with the OAuth2 client credentials grant.
// Every API request obtains a fresh access token; none is cached.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid libcal base url %q: %w", base, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithService(logger, "libcal")

	credentials := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// Token requests go through the same base client as API requests
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	source := &tokenFetcher{
		ctx:     tokenCtx,
		config:  credentials,
		logger:  logger,
		metrics: cfg.Metrics,
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Transport: &oauth2.Transport{Source: source, Base: httpClient.Transport},
			Timeout:   timeout,
		},
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// tokenFetcher requests a new access token each time it is asked.
type tokenFetcher struct {
	ctx     context.Context
	config  *clientcredentials.Config
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

func (f *tokenFetcher) Token() (*oauth2.Token, error) {
	tok, err := f.config.Token(f.ctx)
	if err != nil {
		f.metrics.RecordTokenRequest(f.ctx, instrumentation.TokenResultFailure)
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}
	f.metrics.RecordTokenRequest(f.ctx, instrumentation.TokenResultSuccess)
	f.logger.Debug("access token acquired",
		"token", logging.SanitizeToken(tok.AccessToken),
		"expiry", tok.Expiry)
	return tok, nil
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Events returns the raw events of one calendar for date.
func (c *Client) Events(ctx context.Context, calendarID int, date string) ([]finder.CalendarEvent, error) {
	q := url.Values{}
	q.Set("cal_id", strconv.Itoa(calendarID))
	q.Set("date", date)

	var body eventsResponse
	attrs := instrumentation.NewSpanAttributeBuilder().WithCalendar(calendarID).WithDate(date).Build()
	if err := c.get(ctx, instrumentation.OperationEvents, "/events", q, &body, func() int { return len(body.Events) }, attrs...); err != nil {
		return nil, err
	}

	events := make([]finder.CalendarEvent, 0, len(body.Events))
	for _, e := range body.Events {
		events = append(events, e.toEvent())
	}
	return events, nil
}

// Bookings returns the raw room bookings of a booking location for date.
func (c *Client) Bookings(ctx context.Context, locationID int, date string) ([]finder.Booking, error) {
	q := url.Values{}
	q.Set("lid", strconv.Itoa(locationID))
	q.Set("date", date)

	var body []apiBooking
	attrs := instrumentation.NewSpanAttributeBuilder().WithLocation(locationID).WithDate(date).Build()
	if err := c.get(ctx, instrumentation.OperationBookings, "/space/bookings", q, &body, func() int { return len(body) }, attrs...); err != nil {
		return nil, err
	}

	bookings := make([]finder.Booking, 0, len(body))
	for _, b := range body {
		bookings = append(bookings, b.toBooking())
	}
	return bookings, nil
}

// Spaces returns the bookable spaces of a location with their free slots on date.
func (c *Client) Spaces(ctx context.Context, locationID int, date string) ([]finder.Space, error) {
	q := url.Values{}
	q.Set("availability", date)

	var body []apiSpace
	attrs := instrumentation.NewSpanAttributeBuilder().WithLocation(locationID).WithDate(date).Build()
	path := "/space/items/" + strconv.Itoa(locationID)
	if err := c.get(ctx, instrumentation.OperationSpaces, path, q, &body, func() int { return len(body) }, attrs...); err != nil {
		return nil, err
	}

	spaces := make([]finder.Space, 0, len(body))
	for _, s := range body {
		spaces = append(spaces, s.toSpace())
	}
	return spaces, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
// count reports the number of decoded records once out is filled.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any, count func() int, attrs ...attribute.KeyValue) (err error) {
	ctx, span := instrumentation.StartAPISpan(ctx, op, attrs...)
	defer span.End()

	start := time.Now()
	statusCode := 0
	records := 0
	defer func() {
		c.metrics.RecordAPIOperation(ctx, op, statusCode, records, time.Since(start))
		if err != nil {
			instrumentation.SetSpanError(span, err)
			return
		}
		span.SetAttributes(attribute.Int(instrumentation.SpanAttrRecords, records))
		instrumentation.SetSpanSuccess(span)
	}()

	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	statusCode = resp.StatusCode
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrStatusCode, statusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("libcal request failed",
			logging.Operation(op),
			slog.Int("status_code", resp.StatusCode))
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	records = count()
	c.logger.Debug("libcal request completed",
		logging.Operation(op),
		slog.Int("records", records),
		slog.Duration("duration", time.Since(start)))
	return nil
}
