package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"github.com/agrojardin/checkout/services/checkout/model"
	"github.com/agrojardin/checkout/services/checkout/storage/repository"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	must.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return sqlx.NewDb(db, "postgres"), mock
}

func TestProduct_FindByIDs(t *testing.T) {
	type tcExpected struct {
		products []model.Product
		err      error
	}

	type testCase struct {
		name  string
		given func(mock sqlmock.Sqlmock)
		exp   tcExpected
	}

	desc := "bolsa de 5kg"

	tests := []testCase{
		{
			name: "found",
			given: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "description", "price"}).
					AddRow(1, "Semillas", desc, "10.00").
					AddRow(2, "Abono", nil, "15.25")

				mock.ExpectQuery(`SELECT id, name, description, price\s+FROM products WHERE id = ANY\(\$1\)`).
					WithArgs(sqlmock.AnyArg()).
					WillReturnRows(rows)
			},
			exp: tcExpected{
				products: []model.Product{
					{ID: 1, Name: "Semillas", Description: &desc, Price: decimal.RequireFromString("10")},
					{ID: 2, Name: "Abono", Price: decimal.RequireFromString("15.25")},
				},
			},
		},

		{
			name: "none",
			given: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM products`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price"}))
			},
			exp: tcExpected{products: []model.Product{}},
		},

		{
			name: "driver_error",
			given: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM products`).WillReturnError(errors.New("connection refused"))
			},
			exp: tcExpected{err: errors.New("connection refused")},
		},
	}

	repo := repository.NewProduct()

	for i := range tests {
		tc := tests[i]

		t.Run(tc.name, func(t *testing.T) {
			dbi, mock := newMockDB(t)
			tc.given(mock)

			actual, err := repo.FindByIDs(context.Background(), dbi, []int64{1, 2})
			should.NoError(t, mock.ExpectationsWereMet())

			if tc.exp.err != nil {
				should.EqualError(t, err, tc.exp.err.Error())
				return
			}

			must.NoError(t, err)
			must.Equal(t, len(tc.exp.products), len(actual))

			for j := range tc.exp.products {
				should.Equal(t, tc.exp.products[j].ID, actual[j].ID)
				should.Equal(t, tc.exp.products[j].Name, actual[j].Name)
				should.Equal(t, tc.exp.products[j].Description, actual[j].Description)
				should.True(t, tc.exp.products[j].Price.Equal(actual[j].Price))
			}
		})
	}
}

type mockFinder struct {
	calls       [][]int64
	fnFindByIDs func(ids []int64) ([]model.Product, error)
}

func (m *mockFinder) FindByIDs(ctx context.Context, dbi sqlx.QueryerContext, ids []int64) ([]model.Product, error) {
	m.calls = append(m.calls, ids)

	return m.fnFindByIDs(ids)
}

func TestCachedProduct_FindByIDs(t *testing.T) {
	catalog := map[int64]model.Product{
		1: {ID: 1, Name: "Semillas", Price: decimal.RequireFromString("10")},
		2: {ID: 2, Name: "Abono", Price: decimal.RequireFromString("15.25")},
	}

	finder := &mockFinder{
		fnFindByIDs: func(ids []int64) ([]model.Product, error) {
			var result []model.Product
			for _, id := range ids {
				if p, ok := catalog[id]; ok {
					result = append(result, p)
				}
			}
			return result, nil
		},
	}

	repo := repository.NewCachedProduct(finder, time.Minute)
	ctx := context.Background()

	first, err := repo.FindByIDs(ctx, nil, []int64{1, 1, 3})
	must.NoError(t, err)
	should.Len(t, first, 1)

	second, err := repo.FindByIDs(ctx, nil, []int64{2, 1})
	must.NoError(t, err)
	should.Len(t, second, 2)

	third, err := repo.FindByIDs(ctx, nil, []int64{1, 2})
	must.NoError(t, err)
	should.Len(t, third, 2)

	should.Equal(t, [][]int64{{1, 3}, {2}}, finder.calls)
}

func TestCachedProduct_ErrorNotCached(t *testing.T) {
	fail := true
	finder := &mockFinder{
		fnFindByIDs: func(ids []int64) ([]model.Product, error) {
			if fail {
				return nil, errors.New("timeout")
			}
			return []model.Product{{ID: 1, Name: "Semillas", Price: decimal.NewFromInt(10)}}, nil
		},
	}

	repo := repository.NewPromProduct("test", repository.NewCachedProduct(finder, time.Minute))

	_, err := repo.FindByIDs(context.Background(), nil, []int64{1})
	should.Error(t, err)

	fail = false

	actual, err := repo.FindByIDs(context.Background(), nil, []int64{1})
	must.NoError(t, err)
	should.Len(t, actual, 1)
	should.Len(t, finder.calls, 2)
}
