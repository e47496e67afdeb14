// Package model provides data that the checkout service works with.
package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	ErrProductsNotFound Error = "model: products not found"
	ErrNoItems          Error = "model: no line items"
	ErrNegativeAmount   Error = "model: line item amount is negative"
	ErrInvalidQuantity  Error = "model: line item quantity must be positive"
	ErrMissingField     Error = "model: required field is missing"
)

// TaxedFraction is the share of the billed amount reported as taxed.
// The gateway integration was certified with this value.
var TaxedFraction = decimal.RequireFromString("0.9")

type Error string

func (e Error) Error() string {
	return string(e)
}

// Product is a priced catalog entry.
type Product struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description *string         `db:"description"`
	Price       decimal.Decimal `db:"price"`
}

// LineItem is a product being bought.
type LineItem struct {
	Amount                decimal.Decimal
	ClientItemReferenceID string
	Name                  string
	Quantity              int
}

// ClientInfo identifies the buyer.
type ClientInfo struct {
	FirstName string
	LastName  string
	Email     string
}

// ShippingInfo is where the order goes.
type ShippingInfo struct {
	Address    string
	City       string
	PostalCode string
	Phone      string
}

// Aggregates are the totals reported to the gateway.
type Aggregates struct {
	BilledAmount decimal.Decimal
	TaxedAmount  decimal.Decimal
}

// NewAggregates sums the item amounts.
//
// BilledAmount is the sum rounded to 2 places, TaxedAmount is TaxedFraction
// of the sum rounded to 1 place.
func NewAggregates(items []LineItem) Aggregates {
	sum := decimal.Zero
	for i := range items {
		sum = sum.Add(items[i].Amount)
	}

	return Aggregates{
		BilledAmount: sum.Round(2),
		TaxedAmount:  sum.Mul(TaxedFraction).Round(1),
	}
}

// ItemReference returns the client reference for a product.
func ItemReference(productID int64) string {
	return "Item-" + strconv.FormatInt(productID, 10)
}

// NewLineItems returns one line item per distinct id in ids, in order of first
// occurrence. Repeated ids count towards the quantity.
//
// Every id must have a product in products; otherwise ErrProductsNotFound is
// returned along with the missing ids.
func NewLineItems(ids []int64, products []Product) ([]LineItem, []int64, error) {
	byID := make(map[int64]*Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var (
		order   []int64
		qty     = make(map[int64]int, len(ids))
		missing []int64
	)

	for _, id := range ids {
		if _, ok := qty[id]; !ok {
			order = append(order, id)

			if _, ok := byID[id]; !ok {
				missing = append(missing, id)
			}
		}

		qty[id]++
	}

	if len(order) == 0 || len(missing) > 0 {
		return nil, missing, ErrProductsNotFound
	}

	result := make([]LineItem, 0, len(order))
	for _, id := range order {
		p := byID[id]
		n := qty[id]

		result = append(result, LineItem{
			Amount:                p.Price.Mul(decimal.NewFromInt(int64(n))).Round(2),
			ClientItemReferenceID: ItemReference(id),
			Name:                  p.Name,
			Quantity:              n,
		})
	}

	return result, nil, nil
}

// CheckoutRequest is the body of a checkout call.
type CheckoutRequest struct {
	BuyerInfo    BuyerInfo    `json:"buyerInfo"`
	ShippingInfo ShippingData `json:"shippingInfo"`
	ProductIDs   []int64      `json:"productIds"`
}

type BuyerInfo struct {
	FirstName string `json:"firstName" valid:"required"`
	LastName  string `json:"lastName" valid:"required"`
	Email     string `json:"email" valid:"required,email"`
}

type ShippingData struct {
	Address    string `json:"address" valid:"required"`
	City       string `json:"city" valid:"required"`
	PostalCode string `json:"postalCode" valid:"required"`
	Phone      string `json:"phone" valid:"required"`
}

// ClientInfo converts the buyer section.
func (r *CheckoutRequest) ClientInfo() ClientInfo {
	return ClientInfo{
		FirstName: r.BuyerInfo.FirstName,
		LastName:  r.BuyerInfo.LastName,
		Email:     r.BuyerInfo.Email,
	}
}

// Shipping converts the shipping section.
func (r *CheckoutRequest) Shipping() ShippingInfo {
	return ShippingInfo{
		Address:    r.ShippingInfo.Address,
		City:       r.ShippingInfo.City,
		PostalCode: r.ShippingInfo.PostalCode,
		Phone:      r.ShippingInfo.Phone,
	}
}
