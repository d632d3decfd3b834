// Package restcountries клиент публичного API REST Countries v3.1.
package restcountries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/geobee/geobee/internal/lib/apperr"
	"github.com/geobee/geobee/internal/models"
)

// ErrUpstream возвращается при любой ошибке обращения к REST Countries.
var ErrUpstream = apperr.New(apperr.UpstreamUnavailable, "Failed to load country data")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент с таймаутом на запрос.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// FetchAll загружает весь справочник и приводит записи к models.Country.
// Записи без cca3 или без общего названия отбрасываются.
func (c *Client) FetchAll(ctx context.Context) ([]models.Country, error) {
	const op = "restcountries.FetchAll"

	req, err := c.newRequest(ctx, "/all", url.Values{"fields": {Fields}})
	if err != nil {
		return nil, upstreamErr(op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstreamErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, upstreamErr(op, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}

	var raw []rawCountry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, upstreamErr(op, err)
	}

	countries := make([]models.Country, 0, len(raw))
	for _, r := range raw {
		if country, ok := toCountry(r); ok {
			countries = append(countries, country)
		}
	}
	return countries, nil
}

func upstreamErr(op string, err error) error {
	return apperr.Wrap(apperr.UpstreamUnavailable, ErrUpstream.Message, fmt.Errorf("%s: %w", op, err))
}

func toCountry(r rawCountry) (models.Country, bool) {
	code := strings.ToUpper(strings.TrimSpace(r.CCA3))
	name := strings.TrimSpace(r.Name.Common)
	if code == "" || name == "" {
		return models.Country{}, false
	}

	capital := r.Capital
	if capital == nil {
		capital = []string{}
	}
	languages := r.Languages
	if languages == nil {
		languages = map[string]string{}
	}
	currencies := make(map[string]models.Currency, len(r.Currencies))
	for k, v := range r.Currencies {
		currencies[k] = models.Currency{Name: v.Name, Symbol: v.Symbol}
	}

	return models.Country{
		Code:       code,
		Name:       name,
		Capital:    capital,
		Region:     r.Region,
		Languages:  languages,
		Landlocked: r.Landlocked,
		Area:       r.Area,
		Population: r.Population,
		MapsURL:    r.Maps.GoogleMaps,
		Currencies: currencies,
	}, true
}
