// Package client talks to a running tariff service over its JSON API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meterbill/backend/services/tariff-service/internal/models"
)

// ErrRemote is wrapped by every non-2xx answer.
var ErrRemote = errors.New("tariff service error")

// HTTPDoer is the subset of *http.Client the client needs.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// TariffClient calls the calculator endpoints.
type TariffClient struct {
	baseURL string
	http    HTTPDoer
}

// NewTariffClient returns client instance.
func NewTariffClient(baseURL string, httpClient HTTPDoer) *TariffClient {
	return &TariffClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Rates fetches the raw rate sheet.
func (c *TariffClient) Rates(ctx context.Context) (map[string]json.RawMessage, error) {
	var sheet map[string]json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/api/rates", &sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// KWToMoney prices consumption between two readings.
func (c *TariffClient) KWToMoney(ctx context.Context, meterType string, previous, current float64) (models.CostQuote, error) {
	q := url.Values{}
	q.Set("meter_type", meterType)
	q.Set("previous_reading", formatFloat(previous))
	q.Set("current_reading", formatFloat(current))

	var quote models.CostQuote
	err := c.call(ctx, http.MethodPost, "/api/calculate/kw-to-money?"+q.Encode(), &quote)
	return quote, err
}

// PriceConsumption prices kW directly, without meter readings.
func (c *TariffClient) PriceConsumption(ctx context.Context, meterType string, kw float64) (models.CostQuote, error) {
	q := url.Values{}
	q.Set("meter_type", meterType)
	q.Set("consumption", formatFloat(kw))

	var quote models.CostQuote
	err := c.call(ctx, http.MethodPost, "/api/calculate/kw-to-money?"+q.Encode(), &quote)
	return quote, err
}

// MoneyToKW finds the consumption amount buys.
func (c *TariffClient) MoneyToKW(ctx context.Context, meterType string, amount float64) (models.EnergyQuote, error) {
	q := url.Values{}
	q.Set("meter_type", meterType)
	q.Set("amount", formatFloat(amount))

	var quote models.EnergyQuote
	err := c.call(ctx, http.MethodPost, "/api/calculate/money-to-kw?"+q.Encode(), &quote)
	return quote, err
}

// Calculations lists stored calculations, newest first. limit <= 0 uses the server default.
func (c *TariffClient) Calculations(ctx context.Context, limit int) ([]models.Calculation, error) {
	path := "/api/calculations"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var calcs []models.Calculation
	if err := c.call(ctx, http.MethodGet, path, &calcs); err != nil {
		return nil, err
	}
	return calcs, nil
}

// call sends a bodyless request and decodes the JSON answer into out.
func (c *TariffClient) call(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if status := resp.StatusCode; status < 200 || status > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("%w: %d %s", ErrRemote, status, payload.Error)
		}
		return fmt.Errorf("%w: status %d", ErrRemote, status)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
