// Package google is a small client for the Google Places web service: text search, place details
// and find place from text.
package google

import (
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

	"github.com/whosonfirst/go-poi-directory/metrics"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// DetailsFields are the place details requested for every fetched place.
var DetailsFields = []string{
	"name",
	"formatted_address",
	"geometry",
	"address_components",
	"formatted_phone_number",
	"website",
	"url",
}

// ErrMissingAPIKey is returned by NewClient when no API key is configured.
var ErrMissingAPIKey = errors.New("missing Google Places API key")

type ClientOptions struct {
	APIKey string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

type Client struct {
	api_key     string
	base_url    string
	http_client *http.Client
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

func NewClient(opts *ClientOptions) (*Client, error) {

	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	base_url := opts.BaseURL

	if base_url == "" {
		base_url = DefaultBaseURL
	}

	http_client := opts.HTTPClient

	if http_client == nil {
		http_client = &http.Client{Timeout: 30 * time.Second}
	}

	logger := opts.Logger

	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		api_key:     opts.APIKey,
		base_url:    strings.TrimRight(base_url, "/"),
		http_client: http_client,
		logger:      logger,
		metrics:     opts.Metrics,
	}

	return c, nil
}

// TextSearchOptions describe a single text search request.
type TextSearchOptions struct {
	Query string
	// Location is a "lat,lng" bias point. Ignored if empty.
	Location string
	// Radius in meters. Ignored if Location is empty or Radius is 0.
	Radius    int
	PageToken string
}

// TextSearch requests one page of text search results. Responses with a status other than OK or
// ZERO_RESULTS are returned as errors.
func (c *Client) TextSearch(ctx context.Context, opts *TextSearchOptions) (*TextSearchResponse, error) {

	params := url.Values{}
	params.Set("query", opts.Query)

	if opts.Location != "" {
		params.Set("location", opts.Location)

		if opts.Radius > 0 {
			params.Set("radius", strconv.Itoa(opts.Radius))
		}
	}

	if opts.PageToken != "" {
		params.Set("pagetoken", opts.PageToken)
	}

	var rsp TextSearchResponse

	err := c.get(ctx, "textsearch", params, &rsp)

	if err == nil {
		err = checkStatus(rsp.Status, rsp.ErrorMessage, StatusOK, StatusZeroResults)
	}

	c.metrics.ObserveRequest("textsearch", err)

	if err != nil {
		return nil, fmt.Errorf("text search %q: %w", opts.Query, err)
	}

	return &rsp, nil
}

// Details returns the details for 'place_id' limited to DetailsFields.
func (c *Client) Details(ctx context.Context, place_id string) (*PlaceDetails, error) {

	params := url.Values{}
	params.Set("place_id", place_id)
	params.Set("fields", strings.Join(DetailsFields, ","))

	var rsp DetailsResponse

	err := c.get(ctx, "details", params, &rsp)

	if err == nil {
		err = checkStatus(rsp.Status, rsp.ErrorMessage, StatusOK)
	}

	c.metrics.ObserveRequest("details", err)

	if err != nil {
		return nil, fmt.Errorf("details for %s: %w", place_id, err)
	}

	return &rsp.Result, nil
}

// FindPlace looks up 'input' as a text query and returns the raw response, whatever its API
// status. Only transport and decoding failures are returned as errors.
func (c *Client) FindPlace(ctx context.Context, input string, fields ...string) (*FindPlaceResponse, error) {

	params := url.Values{}
	params.Set("input", input)
	params.Set("inputtype", "textquery")
	params.Set("fields", strings.Join(fields, ","))

	var rsp FindPlaceResponse

	err := c.get(ctx, "findplacefromtext", params, &rsp)

	c.metrics.ObserveRequest("findplacefromtext", err)

	if err != nil {
		return nil, fmt.Errorf("find place %q: %w", input, err)
	}

	return &rsp, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, target any) error {

	params.Set("key", c.api_key)

	uri := fmt.Sprintf("%s/%s/json?%s", c.base_url, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)

	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	c.logger.Debug("Places API request", zap.String("endpoint", endpoint))

	rsp, err := c.http_client.Do(req)

	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}

	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, rsp.Body)
		return fmt.Errorf("%s returned HTTP %d: %s", endpoint, rsp.StatusCode, rsp.Status)
	}

	err = json.NewDecoder(rsp.Body).Decode(target)

	if err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	return nil
}

// StatusError is returned when the API answers with an unexpected status.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {

	if e.Message == "" {
		return fmt.Sprintf("API status %s", e.Status)
	}

	return fmt.Sprintf("API status %s: %s", e.Status, e.Message)
}

func checkStatus(status string, message string, allowed ...string) error {

	for _, s := range allowed {

		if status == s {
			return nil
		}
	}

	return &StatusError{Status: status, Message: message}
}
