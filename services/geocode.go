package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// GeocodeService resolves a location's street address to coordinates via
// the Google Geocoding API.
type GeocodeService struct {
	apiKey     string
	httpClient *http.Client
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func NewGeocodeService() *GeocodeService {
	return &GeocodeService{
		apiKey: os.Getenv("GEOCODE_API_KEY"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Geocode returns (lat, lng, formatted address) for a street address.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (float64, float64, string, error) {
	if s.apiKey == "" {
		return 0, 0, "", fmt.Errorf("GEOCODE_API_KEY not configured")
	}

	endpoint := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/geocode/json?address=%s&key=%s",
		url.QueryEscape(address), url.QueryEscape(s.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return 0, 0, "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, 0, "", fmt.Errorf("geocoding failed: status %d", resp.StatusCode)
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, 0, "", err
	}
	if result.Status != "OK" || len(result.Results) == 0 {
		return 0, 0, "", fmt.Errorf("geocoding returned no match for %q (status %s)", address, result.Status)
	}

	first := result.Results[0]
	return first.Geometry.Location.Lat, first.Geometry.Location.Lng, first.FormattedAddress, nil
}
