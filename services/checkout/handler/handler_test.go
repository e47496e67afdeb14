package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uuid "github.com/satori/go.uuid"
	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	errorutils "github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/libs/handlers"

	"github.com/agrojardin/checkout/services/checkout"
	"github.com/agrojardin/checkout/services/checkout/handler"
	"github.com/agrojardin/checkout/services/checkout/model"
)

type mockCheckoutService struct {
	fnCheckout func(ctx context.Context, req *model.CheckoutRequest) (*checkout.Result, error)
}

func (s *mockCheckoutService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*checkout.Result, error) {
	if s.fnCheckout == nil {
		return &checkout.Result{Response: json.RawMessage(`{}`)}, nil
	}

	return s.fnCheckout(ctx, req)
}

const validBody = `{
	"buyerInfo": {"firstName": "Juan", "lastName": "Pérez", "email": "juan@example.com"},
	"shippingInfo": {"address": "Calle 1", "city": "Montevideo", "postalCode": "11000", "phone": "099123456"},
	"productIds": [1, 2, 2]
}`

func TestCheckout_Create(t *testing.T) {
	checkoutID := uuid.Must(uuid.FromString("8f7b3e4c-5f0a-4c1f-9a57-9b3f3a1d2c11"))

	type tcGiven struct {
		body string
		svc  *mockCheckoutService
	}

	type tcExpected struct {
		code      int
		body      string
		errorCode string
		header    string
	}

	type testCase struct {
		name  string
		given tcGiven
		exp   tcExpected
	}

	tests := []testCase{
		{
			name: "success",
			given: tcGiven{
				body: validBody,
				svc: &mockCheckoutService{
					fnCheckout: func(ctx context.Context, req *model.CheckoutRequest) (*checkout.Result, error) {
						if req.BuyerInfo.Email != "juan@example.com" || len(req.ProductIDs) != 3 {
							return nil, errors.New("unexpected request")
						}

						return &checkout.Result{
							CheckoutID: checkoutID,
							Response:   json.RawMessage(`{"ResultCode":0,"Response":{"Uri":"https://pay"}}`),
						}, nil
					},
				},
			},
			exp: tcExpected{
				code:   http.StatusOK,
				body:   `{"ResultCode":0,"Response":{"Uri":"https://pay"}}`,
				header: checkoutID.String(),
			},
		},

		{
			name:  "malformed_json",
			given: tcGiven{body: `{"buyerInfo":`, svc: &mockCheckoutService{}},
			exp:   tcExpected{code: http.StatusBadRequest},
		},

		{
			name: "invalid_email",
			given: tcGiven{
				body: strings.Replace(validBody, "juan@example.com", "juan", 1),
				svc:  &mockCheckoutService{},
			},
			exp: tcExpected{code: http.StatusBadRequest},
		},

		{
			name: "no_products",
			given: tcGiven{
				body: strings.Replace(validBody, "[1, 2, 2]", "[]", 1),
				svc:  &mockCheckoutService{},
			},
			exp: tcExpected{code: http.StatusBadRequest},
		},

		{
			name: "products_not_found",
			given: tcGiven{
				body: validBody,
				svc: &mockCheckoutService{
					fnCheckout: func(ctx context.Context, req *model.CheckoutRequest) (*checkout.Result, error) {
						return nil, errorutils.NewKind(errorutils.KindUpstreamData, "products do not exist", model.ErrProductsNotFound)
					},
				},
			},
			exp: tcExpected{code: http.StatusBadRequest, errorCode: "upstream_data"},
		},

		{
			name: "lookup_failed",
			given: tcGiven{
				body: validBody,
				svc: &mockCheckoutService{
					fnCheckout: func(ctx context.Context, req *model.CheckoutRequest) (*checkout.Result, error) {
						return nil, errorutils.NewKind(errorutils.KindUpstreamData, "failed to look up products", errors.New("conn refused"))
					},
				},
			},
			exp: tcExpected{code: http.StatusBadGateway, errorCode: "upstream_data"},
		},

		{
			name: "gateway_failed",
			given: tcGiven{
				body: validBody,
				svc: &mockCheckoutService{
					fnCheckout: func(ctx context.Context, req *model.CheckoutRequest) (*checkout.Result, error) {
						return nil, errorutils.NewKind(errorutils.KindGateway, "gateway call failed", errors.New("503"))
					},
				},
			},
			exp: tcExpected{code: http.StatusBadGateway, errorCode: "gateway"},
		},

		{
			name: "expired",
			given: tcGiven{
				body: validBody,
				svc: &mockCheckoutService{
					fnCheckout: func(ctx context.Context, req *model.CheckoutRequest) (*checkout.Result, error) {
						return nil, errorutils.NewKind(errorutils.KindExpiredPayload, "payload expired during submission", context.DeadlineExceeded)
					},
				},
			},
			exp: tcExpected{code: http.StatusGatewayTimeout, errorCode: "expired_payload"},
		},

		{
			name: "signing_failed",
			given: tcGiven{
				body: validBody,
				svc: &mockCheckoutService{
					fnCheckout: func(ctx context.Context, req *model.CheckoutRequest) (*checkout.Result, error) {
						return nil, errorutils.NewKind(errorutils.KindSigning, "failed to sign payload", errors.New("bad key"))
					},
				},
			},
			exp: tcExpected{code: http.StatusInternalServerError, errorCode: "signing"},
		},
	}

	for i := range tests {
		tc := tests[i]

		t.Run(tc.name, func(t *testing.T) {
			h := handler.NewCheckout(tc.given.svc)

			req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(tc.given.body))
			rw := httptest.NewRecorder()

			handlers.AppHandler(h.Create).ServeHTTP(rw, req)

			resp := rw.Result()
			should.Equal(t, tc.exp.code, resp.StatusCode)
			should.Equal(t, "application/json", resp.Header.Get("content-type"))

			if tc.exp.body != "" {
				should.Equal(t, tc.exp.body, rw.Body.String())
			}

			should.Equal(t, tc.exp.header, resp.Header.Get(handler.CheckoutIDHeader))

			if tc.exp.code != http.StatusOK {
				var appErr handlers.AppError
				must.NoError(t, json.Unmarshal(rw.Body.Bytes(), &appErr))
				should.Equal(t, tc.exp.code, appErr.Code)
				should.Equal(t, tc.exp.errorCode, appErr.ErrorCode)
			}
		})
	}
}

func TestRouter(t *testing.T) {
	r := handler.Router(handler.NewCheckout(&mockCheckoutService{}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(validBody))
	rw := httptest.NewRecorder()

	r.ServeHTTP(rw, req)

	should.Equal(t, http.StatusOK, rw.Code)
	should.Equal(t, `{}`, rw.Body.String())
}
