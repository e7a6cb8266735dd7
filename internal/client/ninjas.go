package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"carcompare-api/internal/model"
)

const (
	DefaultBaseURL = "https://api.api-ninjas.com/v1/cars"
	apiKeyHeader   = "X-Api-Key"
)

// ninjasCar is one record of the cars endpoint. The endpoint never
// reports horsepower, weight or price.
type ninjasCar struct {
	Make           string  `json:"make"`
	Model          string  `json:"model"`
	Year           int     `json:"year"`
	Class          string  `json:"class"`
	CombinationMPG float64 `json:"combination_mpg"`
	Displacement   float64 `json:"displacement"`
	Drive          string  `json:"drive"`
	FuelType       string  `json:"fuel_type"`
	Transmission   string  `json:"transmission"`
}

var driveCodes = map[string]string{
	"awd": "all-wheel drive",
	"4wd": "4-wheel drive",
	"rwd": "rear-wheel drive",
	"fwd": "front-wheel drive",
}

// ExpandDrive turns the endpoint's short drive codes into descriptive ones.
// Unknown codes pass through unchanged.
func ExpandDrive(code string) string {
	if d, ok := driveCodes[strings.ToLower(strings.TrimSpace(code))]; ok {
		return d
	}
	return code
}

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// Config configures a NinjasClient
type Config struct {
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64
	Timeout           time.Duration
	Retry             RetryConfig
}

// NinjasClient queries the API Ninjas cars endpoint
type NinjasClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retryConfig RetryConfig
}

// NewNinjasClient creates a new cars API client
func NewNinjasClient(cfg Config) *NinjasClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retry := cfg.Retry
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = time.Second
	}
	if retry.MaxBackoff <= 0 {
		retry.MaxBackoff = 30 * time.Second
	}
	if retry.Multiplier < 1 {
		retry.Multiplier = 2.0
	}

	return &NinjasClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
		retryConfig: retry,
	}
}

// SearchByModel fetches records whose model name contains term
func (c *NinjasClient) SearchByModel(ctx context.Context, term string) ([]model.RawVehicle, error) {
	return c.search(ctx, "model", term)
}

// SearchByMake fetches records of one manufacturer
func (c *NinjasClient) SearchByMake(ctx context.Context, brand string) ([]model.RawVehicle, error) {
	return c.search(ctx, "make", brand)
}

func (c *NinjasClient) search(ctx context.Context, param, value string) ([]model.RawVehicle, error) {
	q := url.Values{}
	q.Set(param, strings.TrimSpace(value))

	body, err := c.fetchWithRetry(ctx, c.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var cars []ninjasCar
	if err := json.Unmarshal(body, &cars); err != nil {
		return nil, fmt.Errorf("failed to parse cars response: %w", err)
	}

	out := make([]model.RawVehicle, 0, len(cars))
	for _, car := range cars {
		out = append(out, model.RawVehicle{
			Make:           car.Make,
			Model:          car.Model,
			Year:           car.Year,
			CombinationMPG: car.CombinationMPG,
			Drive:          ExpandDrive(car.Drive),
			FuelType:       car.FuelType,
			Transmission:   car.Transmission,
			Class:          car.Class,
			Displacement:   car.Displacement,
		})
	}
	return out, nil
}

// fetchWithRetry performs HTTP request with retry logic
func (c *NinjasClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	backoff := c.retryConfig.InitialBackoff

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, status, err := c.do(ctx, url)
		retryable := err != nil || status == http.StatusTooManyRequests || status >= 500

		if err == nil && status == http.StatusOK {
			return body, nil
		}
		if retryable && attempt < c.retryConfig.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(time.Duration(float64(backoff)*c.retryConfig.Multiplier), c.retryConfig.MaxBackoff)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cars api request failed after %d attempts: %w", attempt+1, err)
		}
		return nil, fmt.Errorf("cars api request failed with status %d: %s", status, strings.TrimSpace(string(body)))
	}

	return nil, fmt.Errorf("max retries exceeded")
}

func (c *NinjasClient) do(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
