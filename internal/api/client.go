package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// ErrNetworkFailure is returned when a timings request fails or the API
// reports a non-success status. Callers surface it as a retryable state.
var ErrNetworkFailure = errors.New("timings request failed")

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new API client with sensible defaults.
// Outbound requests are throttled to 2/s with a burst of 4.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		BaseURL: defaultBaseURL,
	}
}

// FetchTimings fetches prayer times for the given date and coordinates using
// the given calculation method. A negative method lets the API pick one.
func (c *Client) FetchTimings(ctx context.Context, date time.Time, lat, lon float64, method int) (*Response, error) {
	dateStr := date.Format("02-01-2006")
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, dateStr)

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	if method >= 0 {
		params.Set("method", strconv.Itoa(method))
	}

	return c.doRequest(ctx, endpoint, params)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
		}
	}

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: API returned status %d: %s", ErrNetworkFailure, resp.StatusCode, string(body))
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode API response: %w", ErrNetworkFailure, err)
	}

	if apiResp.Code != http.StatusOK {
		return nil, fmt.Errorf("%w: API error: code=%d status=%s", ErrNetworkFailure, apiResp.Code, apiResp.Status)
	}

	return &apiResp, nil
}
