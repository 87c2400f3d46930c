package twilio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/sony/gobreaker"

	"github.com/alexmorbo/bttn-relay/domain/remote"
	"github.com/alexmorbo/bttn-relay/pkg/breaker"
	"github.com/alexmorbo/bttn-relay/pkg/logger"
)

const serviceName = "twilio"

const (
	opSendSMS   = "send_sms"
	opPlaceCall = "place_call"
)

func apiCalls(operation, status string) *metrics.Counter {
	return metrics.GetOrCreateCounter(`twilio_api_calls_total{operation="` + operation + `",status="` + status + `"}`)
}

func apiDuration(operation string) *metrics.Histogram {
	return metrics.GetOrCreateHistogram(`twilio_api_duration_seconds{operation="` + operation + `"}`)
}

type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewClient(baseURL, accountSID, authToken string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: breaker.New(serviceName, log),
		logger:  log,
	}
}

func (c *Client) SendSMS(ctx context.Context, from, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)
	return c.call(ctx, opSendSMS, c.resourceURL("Messages.json"), form)
}

// PlaceCall asks Twilio to dial to and fetch TwiML from callbackURL once the
// call is answered.
func (c *Client) PlaceCall(ctx context.Context, from, to, callbackURL string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Url", callbackURL)
	return c.call(ctx, opPlaceCall, c.resourceURL("Calls.json"), form)
}

func (c *Client) resourceURL(resource string) string {
	return c.baseURL + "/2010-04-01/Accounts/" + url.PathEscape(c.accountSID) + "/" + resource
}

func (c *Client) call(ctx context.Context, operation, reqURL string, form url.Values) error {
	_, err := breaker.Execute(c.breaker, serviceName, operation, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, operation, reqURL, form)
	})
	if err != nil {
		apiCalls(operation, "error").Inc()
	}
	return err
}

func (c *Client) do(ctx context.Context, operation, reqURL string, form url.Values) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Twilio request failed",
			logger.ExternalFields(serviceName, operation, http.MethodPost, 0, time.Since(start), err.Error()),
		)
		return remote.Transport(serviceName, operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Twilio request non-2xx",
			logger.ExternalFields(serviceName, operation, http.MethodPost, resp.StatusCode, elapsed, string(respBody)),
		)
		return &remote.APIError{
			Service:    serviceName,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	c.logger.Debug("Twilio request completed",
		logger.ExternalFields(serviceName, operation, http.MethodPost, resp.StatusCode, elapsed, ""),
	)
	apiCalls(operation, "ok").Inc()
	apiDuration(operation).Update(elapsed.Seconds())

	return nil
}
