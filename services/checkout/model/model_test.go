package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/agrojardin/checkout/services/checkout/model"
)

func TestNewAggregates(t *testing.T) {
	type tcExpected struct {
		billed string
		taxed  string
	}

	type testCase struct {
		name  string
		given []string
		exp   tcExpected
	}

	tests := []testCase{
		{
			name:  "empty",
			given: nil,
			exp:   tcExpected{billed: "0", taxed: "0"},
		},

		{
			name:  "whole_and_fraction",
			given: []string{"10", "15.25"},
			exp:   tcExpected{billed: "25.25", taxed: "22.7"},
		},

		{
			name:  "taxed_rounds_half_up",
			given: []string{"0.5"},
			exp:   tcExpected{billed: "0.5", taxed: "0.5"},
		},

		{
			name:  "many_small",
			given: []string{"0.01", "0.01", "0.01"},
			exp:   tcExpected{billed: "0.03", taxed: "0"},
		},
	}

	for i := range tests {
		tc := tests[i]

		t.Run(tc.name, func(t *testing.T) {
			items := make([]model.LineItem, 0, len(tc.given))
			for _, a := range tc.given {
				items = append(items, model.LineItem{Amount: decimal.RequireFromString(a), Quantity: 1})
			}

			actual := model.NewAggregates(items)
			should.Equal(t, tc.exp.billed, actual.BilledAmount.String())
			should.Equal(t, tc.exp.taxed, actual.TaxedAmount.String())
		})
	}
}

func TestNewAggregates_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.SliceOf(rapid.Int64Range(0, 10_000_000)).Draw(t, "cents")

		items := make([]model.LineItem, 0, len(cents))
		sum := decimal.Zero
		for _, c := range cents {
			a := decimal.New(c, -2)
			sum = sum.Add(a)
			items = append(items, model.LineItem{Amount: a, Quantity: 1})
		}

		actual := model.NewAggregates(items)

		should.True(t, sum.Round(2).Equal(actual.BilledAmount))
		should.True(t, sum.Mul(decimal.RequireFromString("0.9")).Round(1).Equal(actual.TaxedAmount))
		should.True(t, actual.TaxedAmount.LessThanOrEqual(actual.BilledAmount.Add(decimal.RequireFromString("0.05"))))
		should.False(t, actual.BilledAmount.IsNegative())
	})
}

func TestNewLineItems(t *testing.T) {
	products := []model.Product{
		{ID: 1, Name: "Semillas", Price: decimal.RequireFromString("10")},
		{ID: 2, Name: "Abono", Price: decimal.RequireFromString("15.25")},
	}

	type tcExpected struct {
		items   []model.LineItem
		missing []int64
		err     error
	}

	type testCase struct {
		name  string
		given []int64
		exp   tcExpected
	}

	tests := []testCase{
		{
			name:  "one_each",
			given: []int64{2, 1},
			exp: tcExpected{
				items: []model.LineItem{
					{Amount: decimal.RequireFromString("15.25"), ClientItemReferenceID: "Item-2", Name: "Abono", Quantity: 1},
					{Amount: decimal.RequireFromString("10"), ClientItemReferenceID: "Item-1", Name: "Semillas", Quantity: 1},
				},
			},
		},

		{
			name:  "repeated_ids_count",
			given: []int64{2, 1, 2, 2},
			exp: tcExpected{
				items: []model.LineItem{
					{Amount: decimal.RequireFromString("45.75"), ClientItemReferenceID: "Item-2", Name: "Abono", Quantity: 3},
					{Amount: decimal.RequireFromString("10"), ClientItemReferenceID: "Item-1", Name: "Semillas", Quantity: 1},
				},
			},
		},

		{
			name:  "missing_product",
			given: []int64{1, 7, 7, 9},
			exp:   tcExpected{missing: []int64{7, 9}, err: model.ErrProductsNotFound},
		},

		{
			name: "no_ids",
			exp:  tcExpected{err: model.ErrProductsNotFound},
		},
	}

	for i := range tests {
		tc := tests[i]

		t.Run(tc.name, func(t *testing.T) {
			actual, missing, err := model.NewLineItems(tc.given, products)
			must.Equal(t, tc.exp.err, err)
			should.Equal(t, tc.exp.missing, missing)

			must.Equal(t, len(tc.exp.items), len(actual))
			for j := range tc.exp.items {
				should.True(t, tc.exp.items[j].Amount.Equal(actual[j].Amount))
				should.Equal(t, tc.exp.items[j].ClientItemReferenceID, actual[j].ClientItemReferenceID)
				should.Equal(t, tc.exp.items[j].Name, actual[j].Name)
				should.Equal(t, tc.exp.items[j].Quantity, actual[j].Quantity)
			}
		})
	}
}
