package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/patrickmn/go-cache"

	"github.com/agrojardin/checkout/services/checkout/model"
)

type productFinder interface {
	FindByIDs(ctx context.Context, dbi sqlx.QueryerContext, ids []int64) ([]model.Product, error)
}

// CachedProduct serves product reads from memory, going to repo for ids not
// seen within ttl.
type CachedProduct struct {
	repo  productFinder
	cache *cache.Cache
}

func NewCachedProduct(repo productFinder, ttl time.Duration) *CachedProduct {
	return &CachedProduct{
		repo:  repo,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *CachedProduct) FindByIDs(ctx context.Context, dbi sqlx.QueryerContext, ids []int64) ([]model.Product, error) {
	result := make([]model.Product, 0, len(ids))

	var miss []int64
	seen := make(map[int64]struct{}, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if v, ok := r.cache.Get(cacheKey(id)); ok {
			result = append(result, v.(model.Product))
			continue
		}

		miss = append(miss, id)
	}

	if len(miss) == 0 {
		return result, nil
	}

	found, err := r.repo.FindByIDs(ctx, dbi, miss)
	if err != nil {
		return nil, err
	}

	for i := range found {
		r.cache.SetDefault(cacheKey(found[i].ID), found[i])
	}

	return append(result, found...), nil
}

func cacheKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}
