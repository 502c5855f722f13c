package flights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/skylark/internal/config"
	"github.com/sandevgo/skylark/internal/core"
)

const offersBody = `{
  "data": [
    {
      "price": {"total": "123.45", "grandTotal": "130.00", "currency": "EUR"},
      "itineraries": [
        {
          "duration": "PT2H15M",
          "segments": [
            {
              "carrierCode": "AI",
              "number": "865",
              "departure": {"iataCode": "DEL", "at": "2026-09-01T06:00:00"},
              "arrival": {"iataCode": "BOM", "at": "2026-09-01T08:15:00"}
            }
          ]
        }
      ]
    },
    {
      "price": {"total": "200.00", "currency": "EUR"},
      "itineraries": [
        {
          "duration": "PT5H40M",
          "segments": [
            {
              "carrierCode": "6E",
              "number": "201",
              "departure": {"iataCode": "DEL", "at": "2026-09-01T09:00:00"},
              "arrival": {"iataCode": "HYD", "at": "2026-09-01T11:00:00"}
            },
            {
              "carrierCode": "6E",
              "number": "544",
              "departure": {"iataCode": "HYD", "at": "2026-09-01T12:30:00"},
              "arrival": {"iataCode": "BOM", "at": "2026-09-01T14:40:00"}
            }
          ]
        }
      ]
    }
  ],
  "dictionaries": {"carriers": {"AI": "AIR INDIA", "6E": "INDIGO"}}
}`

func newTestAmadeus(srv *httptest.Server) *Amadeus {
	return NewAmadeus(&config.AmadeusConfig{
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   srv.URL,
	})
}

func testParams() core.SearchParams {
	return core.SearchParams{
		Origin:        "DEL",
		Destination:   "BOM",
		DepartureDate: "2026-09-01",
		Adults:        1,
		MaxResults:    5,
	}
}

func TestSearch_FlattensOffers(t *testing.T) {
	tokenCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			tokenCalls++
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
			_, _ = w.Write([]byte(`{"access_token": "tok-1", "expires_in": 1799}`))
		case "/v2/shopping/flight-offers":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			assert.Equal(t, "DEL", r.URL.Query().Get("originLocationCode"))
			assert.Equal(t, "BOM", r.URL.Query().Get("destinationLocationCode"))
			_, _ = w.Write([]byte(offersBody))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	a := newTestAmadeus(srv)
	offers, err := a.Search(context.Background(), testParams())
	require.NoError(t, err)
	require.Len(t, offers, 2)

	direct := offers[0]
	assert.Equal(t, "AI865", direct.FlightNumber)
	assert.Equal(t, "AIR INDIA", direct.Airline)
	assert.Equal(t, "DEL", direct.DepartureCity)
	assert.Equal(t, "BOM", direct.ArrivalCity)
	assert.Equal(t, "PT2H15M", direct.Duration)
	assert.Equal(t, 0, direct.Stops)
	require.NotNil(t, direct.Price)
	assert.Equal(t, "123.45", direct.Price.Total)
	assert.Equal(t, "EUR", direct.Price.Currency)

	oneStop := offers[1]
	assert.Equal(t, "6E201", oneStop.FlightNumber)
	assert.Equal(t, "INDIGO", oneStop.Airline)
	assert.Equal(t, "BOM", oneStop.ArrivalCity)
	assert.Equal(t, "2026-09-01T14:40:00", oneStop.ArrivalTime)
	assert.Equal(t, 1, oneStop.Stops)

	// Second search reuses the cached token
	_, err = a.Search(context.Background(), testParams())
	require.NoError(t, err)
	assert.Equal(t, 1, tokenCalls)
}

func TestSearch_AuthFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			_, _ = w.Write([]byte(`{"access_token": "tok-1", "expires_in": 1799}`))
		default:
			http.Error(w, `{"errors":[{"title":"Unauthorized"}]}`, http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	_, err := newTestAmadeus(srv).Search(context.Background(), testParams())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "http 401"), "got: %v", err)
}

func TestSearch_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/security/oauth2/token":
			_, _ = w.Write([]byte(`{"access_token": "tok-1", "expires_in": 1799}`))
		default:
			_, _ = w.Write([]byte(`{"data": []}`))
		}
	}))
	defer srv.Close()

	offers, err := newTestAmadeus(srv).Search(context.Background(), testParams())
	require.NoError(t, err)
	assert.Empty(t, offers)
}
