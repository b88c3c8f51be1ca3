package customer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	customermodel "github.com/orderhub/order-svc/internal/service/models/customer"
)

// Outcome tags the result of a customer lookup. Absence of a customer is a
// well-formed answer from the dependency, not a fault, so it is distinguished
// from transport and protocol failures.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeFailure
)

// LookupResult is the tagged outcome of a single lookup call.
type LookupResult struct {
	Outcome Outcome
	Profile customermodel.Profile
	Err     error
}

// Client resolves customer ids against the customer service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// MustNewClient creates a customer service client from the application config.
func MustNewClient() *Client {
	baseURL := viper.GetString("customer.base_url")
	if baseURL == "" {
		panic("customer.base_url is not set in config")
	}

	timeoutMs := viper.GetInt("customer.timeout_ms")
	if timeoutMs == 0 {
		timeoutMs = 2000
	}

	slog.Info("Customer service client configured", "base_url", baseURL, "timeout_ms", timeoutMs)

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMs) * time.Millisecond,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewClient creates a client against the given base URL with the given
// timeout, bypassing the config. Used by tests.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Lookup resolves a customer id to a profile. The call carries both the
// request context and the client timeout, so a cancelled request abandons the
// lookup immediately. Lookup itself never panics and never returns an error
// value; the caller dispatches on the tagged outcome.
func (c *Client) Lookup(ctx context.Context, customerID string) LookupResult {
	ctx, span := otel.Tracer("customer-client").Start(ctx, "Client.Lookup")
	defer span.End()

	url := c.baseURL + "/" + customerID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return LookupResult{Outcome: OutcomeFailure, Err: fmt.Errorf("failed to build customer request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return LookupResult{Outcome: OutcomeFailure, Err: fmt.Errorf("customer lookup failed: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return LookupResult{Outcome: OutcomeNotFound}
	case resp.StatusCode != http.StatusOK:
		return LookupResult{
			Outcome: OutcomeFailure,
			Err:     fmt.Errorf("customer service returned unexpected status %d", resp.StatusCode),
		}
	}

	var profile customermodel.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return LookupResult{Outcome: OutcomeFailure, Err: fmt.Errorf("failed to decode customer profile: %w", err)}
	}

	return LookupResult{Outcome: OutcomeFound, Profile: profile}
}
