package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi"

	"github.com/agrojardin/checkout/libs/handlers"
	"github.com/agrojardin/checkout/libs/inputs"
	"github.com/agrojardin/checkout/libs/middleware"

	"github.com/agrojardin/checkout/services/checkout"
	"github.com/agrojardin/checkout/services/checkout/model"
)

// CheckoutIDHeader carries the id of the attempt on every checkout response.
const CheckoutIDHeader = "X-Checkout-Id"

type checkoutService interface {
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*checkout.Result, error)
}

type Checkout struct {
	svc checkoutService
}

func NewCheckout(svc checkoutService) *Checkout {
	return &Checkout{svc: svc}
}

// Router mounts the checkout endpoints.
func Router(h *Checkout) chi.Router {
	r := chi.NewRouter()
	r.Method(http.MethodPost, "/", middleware.InstrumentHandler("CreateCheckout", handlers.AppHandler(h.Create)))

	return r
}

// Create submits a checkout for the buyer and products in the body and
// responds with the gateway response as is.
func (h *Checkout) Create(w http.ResponseWriter, r *http.Request) *handlers.AppError {
	ctx := r.Context()

	in := &checkoutInput{}
	if err := inputs.DecodeAndValidateReader(ctx, in, r.Body); err != nil {
		if len(in.invalid) > 0 {
			return handlers.ValidationError("request body", in.invalid)
		}

		return handlers.WrapError(err, "Error in request body", http.StatusBadRequest)
	}

	result, err := h.svc.Checkout(ctx, &in.CheckoutRequest)
	if err != nil {
		var code int
		if errors.Is(err, model.ErrProductsNotFound) {
			code = http.StatusBadRequest
		}

		return handlers.WrapKindError(err, "Error processing checkout", code)
	}

	w.Header().Set(CheckoutIDHeader, result.CheckoutID.String())

	return handlers.RenderRawJSON(result.Response, w, http.StatusOK)
}

type checkoutInput struct {
	model.CheckoutRequest

	invalid map[string]string
}

func (in *checkoutInput) Decode(ctx context.Context, data []byte) error {
	return inputs.DecodeJSON(ctx, data, &in.CheckoutRequest)
}

func (in *checkoutInput) Validate(ctx context.Context) error {
	invalid := map[string]string{}

	_, err := govalidator.ValidateStruct(in.CheckoutRequest)
	if err != nil {
		for k, v := range govalidator.ErrorsByField(err) {
			invalid[k] = v
		}
	}

	if len(in.ProductIDs) == 0 {
		invalid["productIds"] = "array must contain at least one product id"
	}

	for _, id := range in.ProductIDs {
		if id <= 0 {
			invalid["productIds"] = "product ids must be positive"
			break
		}
	}

	if len(invalid) == 0 {
		return nil
	}

	in.invalid = invalid

	if err == nil {
		err = errors.New("invalid product ids")
	}

	return err
}
