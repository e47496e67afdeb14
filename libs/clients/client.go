package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"regexp"
	"time"

	"github.com/agrojardin/checkout/libs/closers"
	appctx "github.com/agrojardin/checkout/libs/context"
	"github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/libs/logging"
	"github.com/agrojardin/checkout/libs/middleware"
	"github.com/agrojardin/checkout/libs/requestutils"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultTimeout is used by clients created without an explicit timeout
const DefaultTimeout = 10 * time.Second

// regular expression mapped to the replacement
var redactPatterns = map[*regexp.Regexp][]byte{
	regexp.MustCompile(`(?i)authorization: (?i)basic.+\n`):  []byte("Authorization: Basic <token>\n"),
	regexp.MustCompile(`(?i)authorization: (?i)bearer.+\n`): []byte("Authorization: Bearer <token>\n"),
	regexp.MustCompile(`"Signature":"[^"]*"`):               []byte(`"Signature":"<sig>"`),
	regexp.MustCompile(`"CVC":"[^"]*"`):                     []byte(`"CVC":"<cvc>"`),
}

// RedactSensitiveHeaders from http request dumps, including signed envelope bodies
func RedactSensitiveHeaders(corpus []byte) []byte {
	for k, v := range redactPatterns {
		corpus = k.ReplaceAll(corpus, v)
	}
	return corpus
}

var concurrentClientRequests = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "concurrent_client_requests",
		Help: "Gauge that holds the current number of client requests",
	},
	[]string{
		"host",
		"method",
	},
)

func init() {
	prometheus.MustRegister(concurrentClientRequests)
}

// SimpleHTTPClient wraps http.Client for making json requests to a single base url
type SimpleHTTPClient struct {
	BaseURL   *url.URL
	AuthToken string

	client *http.Client
}

// NewInstrumented returns a new SimpleHTTPClient whose transport reports prometheus
// metrics labelled with name
func NewInstrumented(name, serverURL, authToken string, timeout time.Duration) (*SimpleHTTPClient, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithHTTPClient(serverURL, authToken, &http.Client{
		Timeout:   timeout,
		Transport: middleware.InstrumentRoundTripper(http.DefaultTransport, name),
	})
}

// NewWithHTTPClient returns a new SimpleHTTPClient, using the provided http.Client
func NewWithHTTPClient(serverURL string, authToken string, client *http.Client) (*SimpleHTTPClient, error) {
	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}

	return &SimpleHTTPClient{
		BaseURL:   baseURL,
		AuthToken: authToken,
		client:    client,
	}, nil
}

// resolve joins path onto the base url path
func (c *SimpleHTTPClient) resolve(path string) string {
	u := *c.BaseURL
	u.Path = singleJoiningSlash(u.Path, path)
	return u.String()
}

func singleJoiningSlash(a, b string) string {
	switch {
	case b == "":
		return a
	case a == "":
		return b
	case a[len(a)-1] == '/' && b[0] == '/':
		return a + b[1:]
	case a[len(a)-1] != '/' && b[0] != '/':
		return a + "/" + b
	}
	return a + b
}

func (c *SimpleHTTPClient) request(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	resolvedURL := c.resolve(path)

	req, err := http.NewRequestWithContext(ctx, method, resolvedURL, body)
	if err != nil {
		return nil, NewHTTPError(err, resolvedURL, ErrMalformedRequest, http.StatusBadRequest, nil)
	}

	req.Header.Set("accept", "application/json")
	if contentType != "" {
		req.Header.Set("content-type", contentType)
	}
	requestutils.SetRequestID(ctx, req)
	if c.AuthToken != "" {
		req.Header.Set("authorization", "Bearer "+c.AuthToken)
	}
	return req, nil
}

// NewRequest creates a request, JSON encoding the body passed
func (c *SimpleHTTPClient) NewRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	if body == nil || method == http.MethodGet {
		return c.request(ctx, method, path, nil, "")
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return nil, NewHTTPError(errors.Wrap(err, ErrUnableToEncodeBody), c.resolve(path), "request", 0, body)
	}
	return c.request(ctx, method, path, buf, "application/json")
}

// NewRawRequest creates a request whose body is sent byte for byte as given
func (c *SimpleHTTPClient) NewRawRequest(ctx context.Context, method, path string, body []byte, contentType string) (*http.Request, error) {
	return c.request(ctx, method, path, bytes.NewReader(body), contentType)
}

// do the specified http request, returning the response with its body already read
func (c *SimpleHTTPClient) do(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	labels := prometheus.Labels{"host": req.URL.Host, "method": req.Method}
	concurrentClientRequests.With(labels).Inc()
	defer concurrentClientRequests.With(labels).Dec()

	logger := logging.Logger(ctx, "clients.SimpleHTTPClient")
	debug, _ := appctx.GetBoolFromContext(ctx, appctx.DebugLoggingCTXKey)

	if debug {
		requestDump, err := httputil.DumpRequestOut(req, true)
		if err != nil {
			logger.Error().Err(err).Str("type", "http.Request").Msg("failed to dump request body")
		} else {
			logger.Debug().Str("type", "http.Request").Msg(string(RedactSensitiveHeaders(requestDump)))
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer closers.Log(ctx, resp.Body)

	if debug {
		dump, err := httputil.DumpResponse(resp, true)
		if err != nil {
			logger.Error().Err(err).Str("type", "http.Response").Msg("failed to dump response body")
		} else {
			logger.Debug().Str("type", "http.Response").Msg(string(dump))
		}
	}

	bodyBytes, err := requestutils.Read(ctx, resp.Body)
	if err != nil {
		return resp, nil, errors.Wrap(err, ErrUnableToReadBody)
	}
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn().
			Int("response_status", resp.StatusCode).
			Str("host", req.URL.Host).
			Str("path", req.URL.Path).
			Msg("failed http client call")
		logger.Debug().Str("body", string(bodyBytes)).Msg("failed http client call")
		return resp, bodyBytes, errors.New(fmt.Errorf("unexpected status %d", resp.StatusCode), ErrProtocolError, nil)
	}

	return resp, bodyBytes, nil
}

// RespErrData - error data for http response
type RespErrData struct {
	ResponseHeaders interface{}
	Body            interface{}
}

// Do the specified http request, decoding the JSON result into v when v is not nil.
// Non 2xx responses return an HTTPError carrying the status and body.
func (c *SimpleHTTPClient) Do(ctx context.Context, req *http.Request, v interface{}) (*http.Response, error) {
	resp, body, err := c.do(ctx, req)
	if err != nil {
		if resp != nil {
			return resp, NewHTTPError(err, req.URL.String(), "response", resp.StatusCode, RespErrData{
				ResponseHeaders: resp.Header,
				Body:            string(body),
			})
		}
		return nil, fmt.Errorf("failed c.do, no response body: %w", err)
	}

	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			return resp, NewHTTPError(errors.Wrap(err, ErrUnableToDecode), req.URL.String(), "response", resp.StatusCode, RespErrData{
				ResponseHeaders: resp.Header,
				Body:            string(body),
			})
		}
	}

	return resp, nil
}
