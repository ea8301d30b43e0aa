package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrIPLookupFailed is returned when the IP geolocation service cannot be
// reached, answers with an error, or returns no coordinates.
var ErrIPLookupFailed = errors.New("ip location lookup failed")

// ipLookupResponse maps the response from ipapi.co.
type ipLookupResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      string   `json:"city"`
	Country   string   `json:"country_name"`
	Timezone  string   `json:"timezone"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

// ipLookupURL is the geolocation endpoint. It is a variable (not a constant)
// so that tests can override it with an httptest server URL.
var ipLookupURL = "https://ipapi.co/json/"

// IPLocator determines the location from the caller's public IP address.
type IPLocator struct {
	httpClient *http.Client
}

// NewIPLocator creates a locator with a 5s request timeout.
func NewIPLocator() *IPLocator {
	return &IPLocator{httpClient: &http.Client{Timeout: 5 * time.Second}}
}

// Lookup queries the IP geolocation service.
func (l *IPLocator) Lookup(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ipLookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIPLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIPLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrIPLookupFailed, resp.StatusCode)
	}

	var result ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrIPLookupFailed, err)
	}

	if result.Error {
		return nil, fmt.Errorf("%w: %s", ErrIPLookupFailed, result.Reason)
	}
	if result.Latitude == nil || result.Longitude == nil {
		return nil, fmt.Errorf("%w: response has no coordinates", ErrIPLookupFailed)
	}

	return &Location{
		Latitude:  *result.Latitude,
		Longitude: *result.Longitude,
		City:      result.City,
		Country:   result.Country,
		Timezone:  result.Timezone,
		Source:    SourceIP,
	}, nil
}
