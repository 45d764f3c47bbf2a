// Package ioebird implements the eBird API v2 client behind the
// observation sync. It covers the two endpoints the sync needs: the
// regional species list and the historic observations of one day.
package ioebird

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aviatlas/avidb/pkg/config"
)

// Observation is one row of the historic observations response. The
// sync requests detail=full, so location and observer fields are
// populated.
type Observation struct {
	SpeciesCode      string  `json:"speciesCode"`
	CommonName       string  `json:"comName"`
	ScientificName   string  `json:"sciName"`
	ObsDt            string  `json:"obsDt"`
	HowMany          int     `json:"howMany"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	LocID            string  `json:"locId"`
	LocName          string  `json:"locName"`
	ObsValid         bool    `json:"obsValid"`
	ObsReviewed      bool    `json:"obsReviewed"`
	UserDisplayName  string  `json:"userDisplayName"`
	Subnational1Name string  `json:"subnational1Name"`
}

// Client talks to the eBird API v2. Every request carries the API
// token in the X-eBirdApiToken header.
type Client struct {
	http   *http.Client
	apiURL string
	apiKey string
}

// New creates a Client configured from the sync settings.
func New(cfg *config.Config) *Client {
	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		apiURL: config.EBirdAPIURL,
		apiKey: cfg.Sync.APIKey,
	}
}

// SpeciesList returns the species codes ever reported in a region.
func (c *Client) SpeciesList(
	ctx context.Context,
	region string,
) ([]string, error) {
	reqURL := fmt.Sprintf("%s/product/spplist/%s", c.apiURL, region)

	var codes []string
	err := c.getJSON(ctx, reqURL, &codes)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// HistoricObservations returns the observations reported in a region
// on one calendar day.
func (c *Client) HistoricObservations(
	ctx context.Context,
	region string,
	day time.Time,
) ([]Observation, error) {
	reqURL := fmt.Sprintf("%s/data/obs/%s/historic/%d/%d/%d",
		c.apiURL, region, day.Year(), int(day.Month()), day.Day())
	reqURL += "?" + url.Values{"detail": {"full"}}.Encode()

	var obs []Observation
	err := c.getJSON(ctx, reqURL, &obs)
	if err != nil {
		return nil, err
	}
	return obs, nil
}

func (c *Client) getJSON(
	ctx context.Context,
	reqURL string,
	target any,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, reqURL, nil,
	)
	if err != nil {
		return err
	}
	req.Header.Set("X-eBirdApiToken", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ebird request %s: unexpected status %s",
			reqURL, resp.Status)
	}

	err = json.NewDecoder(resp.Body).Decode(target)
	if err != nil {
		return fmt.Errorf("cannot decode ebird response: %w", err)
	}
	return nil
}
