package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// withIPServer points the package-level URL at handler for the test.
func withIPServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	origURL := ipLookupURL
	ipLookupURL = server.URL
	t.Cleanup(func() { ipLookupURL = origURL })
}

func TestIPLocator_Success(t *testing.T) {
	withIPServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"latitude": 51.5074,
			"longitude": -0.1278,
			"city": "London",
			"country_name": "United Kingdom",
			"timezone": "Europe/London"
		}`))
	})

	loc, err := NewIPLocator().Lookup(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != 51.5074 {
		t.Errorf("Latitude = %v, want %v", loc.Latitude, 51.5074)
	}
	if loc.Longitude != -0.1278 {
		t.Errorf("Longitude = %v, want %v", loc.Longitude, -0.1278)
	}
	if loc.City != "London" {
		t.Errorf("City = %q, want %q", loc.City, "London")
	}
	if loc.Country != "United Kingdom" {
		t.Errorf("Country = %q, want %q", loc.Country, "United Kingdom")
	}
	if loc.Timezone != "Europe/London" {
		t.Errorf("Timezone = %q, want %q", loc.Timezone, "Europe/London")
	}
	if loc.Source != SourceIP {
		t.Errorf("Source = %q, want %q", loc.Source, SourceIP)
	}
}

func TestIPLocator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"service error", http.StatusOK, `{"error": true, "reason": "RateLimited"}`, "RateLimited"},
		{"missing coordinates", http.StatusOK, `{"city": "Nowhere"}`, "no coordinates"},
		{"http 500", http.StatusInternalServerError, `oops`, "500"},
		{"invalid json", http.StatusOK, `not json at all`, "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withIPServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := NewIPLocator().Lookup(context.Background())
			if !errors.Is(err, ErrIPLookupFailed) {
				t.Fatalf("got %v, want ErrIPLookupFailed", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error should mention %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestIPLocator_ConnectionRefused(t *testing.T) {
	origURL := ipLookupURL
	ipLookupURL = "http://127.0.0.1:1" // nothing listening
	defer func() { ipLookupURL = origURL }()

	_, err := NewIPLocator().Lookup(context.Background())
	if !errors.Is(err, ErrIPLookupFailed) {
		t.Fatalf("got %v, want ErrIPLookupFailed", err)
	}
}

func TestIPLocator_ZeroCoordinatesAreValid(t *testing.T) {
	withIPServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 0, "longitude": 0}`))
	})

	loc, err := NewIPLocator().Lookup(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != 0 || loc.Longitude != 0 {
		t.Errorf("got %v,%v", loc.Latitude, loc.Longitude)
	}
}
