package common

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"sort"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// BreakerConfig configures the circuit breaker wrapped around remote fetches.
type BreakerConfig struct {
	// Enabled turns the circuit breaker on
	Enabled bool
	// MaxRequests is the number of requests allowed while half-open
	MaxRequests uint32
	// IntervalSecond is the cyclic period in which failure counts are cleared while closed
	IntervalSecond int `validate:"gte=0"`
	// TimeoutSecond is how long the breaker stays open before trying half-open
	TimeoutSecond int `validate:"gte=0"`
	// FailureThreshold is the failure ratio at which the breaker trips
	FailureThreshold float64 `validate:"gte=0,lte=1"`
	// MinRequests is the number of requests needed before the ratio is evaluated
	MinRequests uint32
}

// ClientConfig holds all parameters of a document fetcher.
type ClientConfig struct {
	// Endpoints are the base URLs of the JSON:API service (round-robin)
	Endpoints []string `validate:"required,min=1,dive,url"`
	// TimeoutSecond is the timeout of a single request, 0 disables it
	TimeoutSecond int `validate:"gte=0"`
	// RetryCount is how many times a request is attempted
	RetryCount int `validate:"gte=1"`
	// Headers are added to every request (e.g. Authorization)
	Headers map[string]string
	// Breaker configures the circuit breaker
	Breaker BreakerConfig
}

// DefaultClientConfig returns a configuration for a service on localhost.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoints:     []string{"http://localhost:8080"},
		TimeoutSecond: 10,
		RetryCount:    3,
		Headers:       map[string]string{},
		Breaker: BreakerConfig{
			Enabled:          false,
			MaxRequests:      5,
			IntervalSecond:   30,
			TimeoutSecond:    60,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
	}
}

var validate = validator.New()

// Validate checks the configuration.
func (c *ClientConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	return nil
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))

	// Circuit breaker
	addSection("Circuit Breaker")
	addField("Enabled", strconv.FormatBool(c.Breaker.Enabled))
	if c.Breaker.Enabled {
		addField("Max Requests", strconv.FormatUint(uint64(c.Breaker.MaxRequests), 10))
		addField("Interval", fmt.Sprintf("%d sec", c.Breaker.IntervalSecond))
		addField("Timeout", fmt.Sprintf("%d sec", c.Breaker.TimeoutSecond))
		addField("Failure Threshold", strconv.FormatFloat(c.Breaker.FailureThreshold, 'f', 2, 64))
		addField("Min Requests", strconv.FormatUint(uint64(c.Breaker.MinRequests), 10))
	}

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	// Headers (values are hidden, they usually carry credentials)
	if len(c.Headers) > 0 {
		addSection("Headers")
		keys := make([]string, 0, len(c.Headers))
		for k := range c.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			addField(k, "***")
		}
	}

	return sb.String()
}
