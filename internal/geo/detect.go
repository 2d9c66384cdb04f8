// Package geo detects the device's city from its public IP. It backs the
// Aladhan provider when no city has been configured yet, so a freshly
// installed board shows sensible times before setup finishes.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Location holds the detected locality.
type Location struct {
	City     string `json:"city"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}

// ipAPIResponse maps the response from ip-api.com.
type ipAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}

const defaultAPIURL = "http://ip-api.com/json/?fields=status,message,city,country,timezone"

// Detector queries the geolocation service.
type Detector struct {
	httpClient *http.Client

	// APIURL is the geolocation endpoint. Exported for testing with
	// httptest.
	APIURL string
}

// NewDetector creates a detector with a short timeout; geolocation is a
// convenience, not a dependency.
func NewDetector() *Detector {
	return &Detector{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		APIURL:     defaultAPIURL,
	}
}

// Detect determines the device's location from its public IP address.
// ip-api.com is a free service requiring no API key.
func (d *Detector) Detect(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.APIURL, nil)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", result.Message)
	}

	return &Location{
		City:     result.City,
		Country:  result.Country,
		Timezone: result.Timezone,
	}, nil
}
