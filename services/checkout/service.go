// Package checkout builds, signs and submits Plexo express checkout requests.
package checkout

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	uuid "github.com/satori/go.uuid"

	"github.com/agrojardin/checkout/libs/clients/plexo"
	appctx "github.com/agrojardin/checkout/libs/context"
	errorutils "github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/libs/logging"
	"github.com/agrojardin/checkout/services/checkout/model"
)

type productRepo interface {
	FindByIDs(ctx context.Context, dbi sqlx.QueryerContext, ids []int64) ([]model.Product, error)
}

// Service runs checkout attempts. It is safe for concurrent use.
type Service struct {
	cfg      *Config
	dbi      sqlx.QueryerContext
	products productRepo
	builder  *RequestBuilder
	signer   plexo.Signer
	gateway  plexo.Gateway
}

// Result is the outcome of a submitted checkout.
type Result struct {
	CheckoutID uuid.UUID
	Response   json.RawMessage
}

// NewService returns a Service for the merchant in cfg.
func NewService(
	cfg *Config,
	dbi sqlx.QueryerContext,
	products productRepo,
	signer plexo.Signer,
	gateway plexo.Gateway,
	opts ...BuilderOption,
) *Service {
	return &Service{
		cfg:      cfg,
		dbi:      dbi,
		products: products,
		builder:  NewRequestBuilder(cfg, opts...),
		signer:   signer,
		gateway:  gateway,
	}
}

// Checkout prices the requested products, then builds, signs and submits
// a fresh envelope. The gateway response is returned unmodified.
func (s *Service) Checkout(ctx context.Context, req *model.CheckoutRequest) (*Result, error) {
	checkoutID := uuid.NewV4()
	ctx = context.WithValue(ctx, appctx.CheckoutIDCTXKey, checkoutID.String())

	l := logging.Logger(ctx, "checkout.Checkout").With().Str("checkout_id", checkoutID.String()).Logger()

	items, err := s.lineItems(ctx, req.ProductIDs)
	if err != nil {
		return nil, logging.LogAndError(&l, "failed to price products", err)
	}

	env, err := s.Prepare(items, req.ClientInfo(), req.Shipping())
	if err != nil {
		return nil, logging.LogAndError(&l, "failed to prepare envelope", err)
	}

	gctx := ctx
	if s.cfg.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, s.cfg.GatewayTimeout)
		defer cancel()
	}

	resp, err := s.gateway.ExpressCheckout(gctx, env)
	if err != nil {
		return nil, logging.LogAndError(&l, "failed to submit envelope", err)
	}

	l.Info().Int("items", len(items)).Msg("checkout submitted")

	return &Result{CheckoutID: checkoutID, Response: resp}, nil
}

// Prepare builds and signs an envelope without submitting it.
func (s *Service) Prepare(items []model.LineItem, client model.ClientInfo, shipping model.ShippingInfo) (*plexo.SignedEnvelope, error) {
	payload, err := s.builder.Build(items, client, shipping)
	if err != nil {
		return nil, err
	}

	return plexo.Seal(&payload, s.signer)
}

func (s *Service) lineItems(ctx context.Context, ids []int64) ([]model.LineItem, error) {
	if len(ids) == 0 {
		return nil, errorutils.NewKindWithData(
			errorutils.KindValidation,
			"invalid checkout input",
			model.ErrNoItems,
			map[string]string{"productIds": model.ErrNoItems.Error()},
		)
	}

	lctx := ctx
	if s.cfg.LookupTimeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, s.cfg.LookupTimeout)
		defer cancel()
	}

	products, err := s.products.FindByIDs(lctx, s.dbi, ids)
	if err != nil {
		return nil, errorutils.NewKind(errorutils.KindUpstreamData, "failed to look up products", err)
	}

	items, missing, err := model.NewLineItems(ids, products)
	if err != nil {
		if errors.Is(err, model.ErrProductsNotFound) {
			return nil, errorutils.NewKindWithData(
				errorutils.KindUpstreamData,
				"products do not exist",
				err,
				map[string]interface{}{"missing": missing},
			)
		}

		return nil, errorutils.NewKind(errorutils.KindUpstreamData, "failed to price products", err)
	}

	return items, nil
}
