// Package flights provides the Amadeus flight-offers client.
package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/skylark/internal/config"
	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/pkg/log"
	"github.com/sandevgo/skylark/pkg/retry"
)

// tokenSlack renews the OAuth token this long before its reported expiry.
const tokenSlack = 30 * time.Second

type Amadeus struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
	retrier   *retry.Retrier

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewAmadeus(cfg *config.AmadeusConfig) *Amadeus {
	return &Amadeus{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		retrier:   retry.NewDefaultRetrier(),
	}
}

// Search queries the flight-offers endpoint and flattens each offer's
// first itinerary into a core.FlightOffer.
func (a *Amadeus) Search(ctx context.Context, params core.SearchParams) ([]core.FlightOffer, error) {
	token, err := a.ensureToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("amadeus token: %w", err)
	}

	q := url.Values{}
	q.Set("originLocationCode", params.Origin)
	q.Set("destinationLocationCode", params.Destination)
	q.Set("departureDate", params.DepartureDate)
	q.Set("adults", strconv.Itoa(params.Adults))
	q.Set("max", strconv.Itoa(params.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"/v2/shopping/flight-offers?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight search request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight search http %d: %s", resp.StatusCode, string(data))
	}

	var result offersResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode offers: %w", err)
	}

	offers := make([]core.FlightOffer, 0, len(result.Data))
	for _, raw := range result.Data {
		offers = append(offers, flatten(raw, result.Dictionaries.Carriers))
	}

	log.FromCtx(ctx).Debug().Int("count", len(offers)).Msg("flight offers fetched")
	return offers, nil
}

func (a *Amadeus) ensureToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry.Add(-tokenSlack)) {
		return a.token, nil
	}

	err := a.retrier.Do(ctx, func() error {
		return a.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return a.token, nil
}

func (a *Amadeus) fetchToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.apiKey)
	form.Set("client_secret", a.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read token body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token http %d: %s", resp.StatusCode, string(data))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("empty access token")
	}

	a.token = token.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	log.FromCtx(ctx).Info().Msg("amadeus token refreshed")
	return nil
}

type offersResponse struct {
	Data []rawOffer `json:"data"`

	Dictionaries struct {
		Carriers map[string]string `json:"carriers"`
	} `json:"dictionaries"`
}

type rawOffer struct {
	Price struct {
		Total      string `json:"total"`
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`

	Itineraries []struct {
		Duration string `json:"duration"`
		Segments []struct {
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
			Departure   struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"arrival"`
		} `json:"segments"`
	} `json:"itineraries"`
}

func flatten(raw rawOffer, carriers map[string]string) core.FlightOffer {
	offer := core.FlightOffer{}

	if raw.Price.Total != "" || raw.Price.GrandTotal != "" {
		offer.Price = &core.Price{
			Total:      raw.Price.Total,
			GrandTotal: raw.Price.GrandTotal,
			Currency:   raw.Price.Currency,
		}
	}

	if len(raw.Itineraries) == 0 {
		return offer
	}

	itin := raw.Itineraries[0]
	offer.Duration = itin.Duration
	if len(itin.Segments) == 0 {
		return offer
	}

	first := itin.Segments[0]
	last := itin.Segments[len(itin.Segments)-1]

	offer.FlightNumber = first.CarrierCode + first.Number
	offer.Airline = first.CarrierCode
	if name, ok := carriers[first.CarrierCode]; ok {
		offer.Airline = name
	}
	offer.DepartureCity = first.Departure.IataCode
	offer.ArrivalCity = last.Arrival.IataCode
	offer.DepartureTime = first.Departure.At
	offer.ArrivalTime = last.Arrival.At
	offer.Stops = len(itin.Segments) - 1

	return offer
}
