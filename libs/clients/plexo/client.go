package plexo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agrojardin/checkout/libs/clients"
	errorutils "github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/libs/logging"
)

const (
	// DefaultGatewayURL is the Plexo testing environment.
	DefaultGatewayURL = "https://testing.plexo.com.uy:4043/SecurePaymentGateway.svc"

	expressCheckoutPath = "ExpressCheckout"
)

// Gateway submits signed envelopes.
type Gateway interface {
	ExpressCheckout(ctx context.Context, env *SignedEnvelope) (json.RawMessage, error)
}

// Client talks to the Plexo secure payment gateway.
type Client struct {
	client *clients.SimpleHTTPClient
	now    func() time.Time
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	now        func() time.Time
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient uses hc instead of an instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithTimeout bounds each gateway call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithClock replaces time.Now for expiration checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New returns a Client for the gateway at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	o := &options{now: time.Now}
	for _, fn := range opts {
		fn(o)
	}

	var (
		cl  *clients.SimpleHTTPClient
		err error
	)
	if o.httpClient != nil {
		if o.timeout > 0 {
			o.httpClient.Timeout = o.timeout
		}
		cl, err = clients.NewWithHTTPClient(baseURL, "", o.httpClient)
	} else {
		cl, err = clients.NewInstrumented("plexo", baseURL, "", o.timeout)
	}
	if err != nil {
		return nil, err
	}

	return &Client{client: cl, now: o.now}, nil
}

// ExpressCheckout submits env and returns the gateway response unmodified.
//
// An envelope past its expiration is rejected without a call. The call is
// bounded by the expiration instant; a failure once it has passed is
// reported as expired rather than as a gateway failure. Nothing is retried.
func (c *Client) ExpressCheckout(ctx context.Context, env *SignedEnvelope) (json.RawMessage, error) {
	if env == nil {
		return nil, errorutils.NewKind(errorutils.KindSigning, "failed to submit envelope", ErrNoEnvelope)
	}

	logger := logging.Logger(ctx, "plexo.ExpressCheckout")

	expiresAt := env.ExpiresAt()
	if !c.now().Before(expiresAt) {
		return nil, errorutils.NewKindWithData(
			errorutils.KindExpiredPayload,
			"payload expired before submission",
			nil,
			map[string]interface{}{"expiredAt": expiresAt.UTC()},
		)
	}

	ctx, cancel := context.WithDeadline(ctx, expiresAt)
	defer cancel()

	req, err := c.client.NewRawRequest(ctx, http.MethodPost, expressCheckoutPath, env.Body(), "application/json")
	if err != nil {
		return nil, errorutils.NewKind(errorutils.KindGateway, "failed to create gateway request", err)
	}

	var raw json.RawMessage
	if _, err := c.client.Do(ctx, req, &raw); err != nil {
		if !c.now().Before(expiresAt) {
			return nil, errorutils.NewKindWithData(
				errorutils.KindExpiredPayload,
				"payload expired during submission",
				err,
				map[string]interface{}{"expiredAt": expiresAt.UTC()},
			)
		}

		failure := GatewayFailure{}
		if state, ok := clients.HTTPStateOf(err); ok {
			failure.Status = state.Status
			if data, ok := state.Body.(clients.RespErrData); ok {
				failure.Body, _ = data.Body.(string)
			}
		}

		if failure.Status >= 200 && failure.Status <= 299 {
			err = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}

		logger.Error().Err(err).Int("status", failure.Status).Msg("gateway call failed")
		return nil, errorutils.NewKindWithData(errorutils.KindGateway, "gateway call failed", err, failure)
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		logger.Warn().Err(err).Msg("gateway response has no result code")
		return raw, nil
	}

	if !result.OK() {
		logger.Warn().
			Int("result_code", result.ResultCode).
			Str("error_message", result.ErrorMessage).
			Msg("gateway rejected request")
	}

	return raw, nil
}
