package ipinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Info is the best-effort origin of a login.
type Info struct {
	IP      string
	City    string
	Country string
}

// Fallback is used whenever the geolocation service cannot be reached. A
// failed lookup must never fail the login that triggered it.
var Fallback = Info{
	IP:      "127.0.0.1",
	City:    "Localhost",
	Country: "Local Network",
}

// Lookuper resolves the caller's public IP and location.
type Lookuper interface {
	Lookup(ctx context.Context) Info
}

// Client queries an ipapi.co style endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup fetches the public IP and location. Any transport, status or decode
// failure is absorbed into Fallback; Lookup never returns an error.
func (c *Client) Lookup(ctx context.Context) Info {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json/", nil)
	if err != nil {
		log.WithError(err).Warn("Failed to build IP lookup request")
		return Fallback
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("IP lookup failed, using fallback")
		return Fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithField("status", resp.StatusCode).Warn("IP lookup returned non-2xx, using fallback")
		return Fallback
	}

	var body struct {
		IP          string `json:"ip"`
		City        string `json:"city"`
		CountryName string `json:"country_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("Failed to decode IP lookup response, using fallback")
		return Fallback
	}

	info := Info{IP: body.IP, City: body.City, Country: body.CountryName}
	if info.IP == "" {
		info.IP = "Unknown"
	}
	if info.City == "" {
		info.City = "Unknown"
	}
	if info.Country == "" {
		info.Country = "Unknown"
	}
	return info
}

// Location renders the info the way user profiles store it.
func (i Info) Location() string {
	return fmt.Sprintf("%s, %s", i.City, i.Country)
}
