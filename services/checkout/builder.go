package checkout

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/agrojardin/checkout/libs/clients/plexo"
	errorutils "github.com/agrojardin/checkout/libs/errors"
	"github.com/agrojardin/checkout/libs/ptr"
	"github.com/agrojardin/checkout/services/checkout/model"
)

// PayloadValidity is how long a built payload stays acceptable to the gateway.
const PayloadValidity = time.Hour

var defaultReferences = &referenceSource{}

// RequestBuilder turns validated purchase data into gateway payloads.
type RequestBuilder struct {
	cfg  *Config
	now  func() time.Time
	next func(now time.Time) string
}

// BuilderOption configures a RequestBuilder.
type BuilderOption func(*RequestBuilder)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *RequestBuilder) {
		b.now = now
	}
}

// WithReferences replaces the client reference id source.
func WithReferences(next func(now time.Time) string) BuilderOption {
	return func(b *RequestBuilder) {
		b.next = next
	}
}

// NewRequestBuilder returns a builder for the merchant in cfg.
func NewRequestBuilder(cfg *Config, opts ...BuilderOption) *RequestBuilder {
	b := &RequestBuilder{
		cfg:  cfg,
		now:  time.Now,
		next: defaultReferences.next,
	}

	for _, fn := range opts {
		fn(b)
	}

	return b
}

// Build returns the payload for one checkout attempt. Each call gets a new
// client reference id and an expiration PayloadValidity from now.
func (b *RequestBuilder) Build(items []model.LineItem, client model.ClientInfo, shipping model.ShippingInfo) (plexo.Payload, error) {
	if err := validateInput(items, client, shipping); err != nil {
		return plexo.Payload{}, err
	}

	now := b.now()
	agg := model.NewAggregates(items)

	wireItems := make([]plexo.Item, 0, len(items))
	for i := range items {
		wireItems = append(wireItems, plexo.Item{
			Amount:                plexo.NewAmount(items[i].Amount.Round(2)),
			ClientItemReferenceID: items[i].ClientItemReferenceID,
			Name:                  items[i].Name,
			Quantity:              items[i].Quantity,
		})
	}

	var nonStorable *plexo.NonStorableItems
	if b.cfg.CVC != "" {
		nonStorable = &plexo.NonStorableItems{CVC: b.cfg.CVC}
	}

	return plexo.Payload{
		Fingerprint: b.cfg.Fingerprint,
		Object: plexo.ExpressCheckoutRequest{
			Client: b.cfg.Client,
			Request: plexo.AuthorizationRequest{
				AuthorizationData: plexo.AuthorizationData{
					Action: b.cfg.Action,
					ClientInformation: plexo.ClientInformation{
						Name:     client.FirstName,
						LastName: client.LastName,
						Address:  shipping.Address,
						Email:    client.Email,
					},
					DoNotUseCallback:   b.cfg.DoNotUseCallback,
					LimitBanks:         copyStrings(b.cfg.LimitBanks),
					LimitIssuers:       copyStrings(b.cfg.LimitIssuers),
					MetaReference:      client.Email,
					OptionalCommerceID: ptr.Copy(b.cfg.CommerceID),
					RedirectURI:        ptr.Copy(b.cfg.RedirectURI),
					Type:               b.cfg.AuthorizationType,
				},
				PaymentData: plexo.PaymentData{
					ClientReferenceID: b.next(now),
					CurrencyID:        b.cfg.CurrencyID,
					FinancialInclusion: plexo.FinancialInclusion{
						BilledAmount:  plexo.NewAmount(agg.BilledAmount),
						InvoiceNumber: b.cfg.InvoiceNumber,
						TaxedAmount:   plexo.NewAmount(agg.TaxedAmount),
						Type:          b.cfg.FinancialInclusionType,
					},
					Installments:       b.cfg.Installments,
					Items:              wireItems,
					OptionalCommerceID: ptr.Copy(b.cfg.CommerceID),
					PaymentInstrumentInput: plexo.PaymentInstrumentInput{
						NonStorableItems: nonStorable,
						OptionalInstrumentFields: plexo.OptionalInstrumentFields{
							ShippingAddress:     shipping.Address,
							ShippingCity:        shipping.City,
							ShippingCountry:     b.cfg.ShippingCountry,
							ShippingFirstName:   client.FirstName,
							ShippingLastName:    client.LastName,
							ShippingPhoneNumber: shipping.Phone,
							ShippingZipCode:     shipping.PostalCode,
						},
					},
				},
			},
		},
		UTCUnixTimeExpiration: now.Add(PayloadValidity).UnixMilli(),
	}, nil
}

func validateInput(items []model.LineItem, client model.ClientInfo, shipping model.ShippingInfo) error {
	fields := map[string]string{}

	if len(items) == 0 {
		fields["items"] = model.ErrNoItems.Error()
	}

	for i := range items {
		if items[i].Amount.IsNegative() {
			fields["items"] = model.ErrNegativeAmount.Error()
		}

		if items[i].Quantity <= 0 {
			fields["items"] = model.ErrInvalidQuantity.Error()
		}
	}

	required := []struct {
		name  string
		value string
	}{
		{"firstName", client.FirstName},
		{"lastName", client.LastName},
		{"email", client.Email},
		{"address", shipping.Address},
		{"city", shipping.City},
		{"postalCode", shipping.PostalCode},
		{"phone", shipping.Phone},
	}

	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			fields[f.name] = model.ErrMissingField.Error()
		}
	}

	if _, ok := fields["email"]; !ok && !govalidator.IsEmail(client.Email) {
		fields["email"] = "model: email is not valid"
	}

	if len(fields) == 0 {
		return nil
	}

	return errorutils.NewKindWithData(errorutils.KindValidation, "invalid checkout input", nil, fields)
}

func copyStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}

	return append([]string(nil), s...)
}
