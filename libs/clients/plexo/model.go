package plexo

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ErrMalformedResponse is returned when a 2xx gateway response is not a json document.
	ErrMalformedResponse Error = "plexo: malformed gateway response"
	// ErrNoEnvelope is returned when ExpressCheckout is called without an envelope.
	ErrNoEnvelope Error = "plexo: no envelope to submit"
	// ErrNoSigner is returned when Seal is called without a signer.
	ErrNoSigner Error = "plexo: no signer"
)

type Error string

func (e Error) Error() string {
	return string(e)
}

// Amount is a money value written as a bare json number.
type Amount struct {
	decimal.Decimal
}

// NewAmount returns d as an Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// Payload is the document whose canonical form is signed.
type Payload struct {
	Fingerprint           string                 `json:"Fingerprint"`
	Object                ExpressCheckoutRequest `json:"Object"`
	UTCUnixTimeExpiration int64                  `json:"UTCUnixTimeExpiration"`
}

// ExpiresAt returns the expiration as a time.
func (p *Payload) ExpiresAt() time.Time {
	return time.UnixMilli(p.UTCUnixTimeExpiration)
}

type ExpressCheckoutRequest struct {
	Client  string               `json:"Client"`
	Request AuthorizationRequest `json:"Request"`
}

type AuthorizationRequest struct {
	AuthorizationData AuthorizationData `json:"AuthorizationData"`
	PaymentData       PaymentData       `json:"PaymentData"`
}

type AuthorizationData struct {
	Action             int               `json:"Action"`
	ClientInformation  ClientInformation `json:"ClientInformation"`
	DoNotUseCallback   bool              `json:"DoNotUseCallback"`
	LimitBanks         []string          `json:"LimitBanks,omitempty"`
	LimitIssuers       []string          `json:"LimitIssuers,omitempty"`
	MetaReference      string            `json:"MetaReference"`
	OptionalCommerceID *int64            `json:"OptionalCommerceId,omitempty"`
	RedirectURI        *string           `json:"RedirectUri,omitempty"`
	Type               int               `json:"Type"`
}

type ClientInformation struct {
	Name     string `json:"Name"`
	LastName string `json:"LastName"`
	Address  string `json:"Address"`
	Email    string `json:"Email"`
}

type PaymentData struct {
	ClientReferenceID      string                 `json:"ClientReferenceId"`
	CurrencyID             int                    `json:"CurrencyId"`
	FinancialInclusion     FinancialInclusion     `json:"FinancialInclusion"`
	Installments           int                    `json:"Installments"`
	Items                  []Item                 `json:"Items"`
	OptionalCommerceID     *int64                 `json:"OptionalCommerceId,omitempty"`
	PaymentInstrumentInput PaymentInstrumentInput `json:"PaymentInstrumentInput"`
}

type FinancialInclusion struct {
	BilledAmount  Amount `json:"BilledAmount"`
	InvoiceNumber int64  `json:"InvoiceNumber"`
	TaxedAmount   Amount `json:"TaxedAmount"`
	Type          int    `json:"Type"`
}

type Item struct {
	Amount                Amount `json:"Amount"`
	ClientItemReferenceID string `json:"ClientItemReferenceId"`
	Name                  string `json:"Name"`
	Quantity              int    `json:"Quantity"`
}

type PaymentInstrumentInput struct {
	NonStorableItems                   *NonStorableItems        `json:"NonStorableItems,omitempty"`
	OptionalInstrumentFields           OptionalInstrumentFields `json:"OptionalInstrumentFields"`
	UseExtendedClientCreditIfAvailable bool                     `json:"UseExtendedClientCreditIfAvailable"`
}

type NonStorableItems struct {
	CVC string `json:"CVC"`
}

type OptionalInstrumentFields struct {
	ShippingAddress     string `json:"ShippingAddress"`
	ShippingCity        string `json:"ShippingCity"`
	ShippingCountry     string `json:"ShippingCountry"`
	ShippingFirstName   string `json:"ShippingFirstName"`
	ShippingLastName    string `json:"ShippingLastName"`
	ShippingPhoneNumber string `json:"ShippingPhoneNumber"`
	ShippingZipCode     string `json:"ShippingZipCode"`
}

// Result holds the status members of a gateway response.
type Result struct {
	ResultCode   int    `json:"ResultCode"`
	ErrorMessage string `json:"ErrorMessage,omitempty"`
}

// OK reports whether the gateway accepted the request.
func (r Result) OK() bool {
	return r.ResultCode == 0
}

// GatewayFailure is attached to gateway errors.
type GatewayFailure struct {
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
}
