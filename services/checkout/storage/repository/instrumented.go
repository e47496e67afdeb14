package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agrojardin/checkout/services/checkout/model"
)

var productDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
	Name:       "checkout_repository_product_duration_seconds",
	Help:       "product repository runtime duration and result",
	MaxAge:     time.Minute,
	Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
}, []string{"instance_name", "method", "result"})

// PromProduct wraps a product repository with Prometheus metrics.
type PromProduct struct {
	name string
	repo productFinder
	vec  *prometheus.SummaryVec
}

func NewPromProduct(name string, repo productFinder) *PromProduct {
	return &PromProduct{name: name, repo: repo, vec: productDuration}
}

func (r *PromProduct) FindByIDs(ctx context.Context, dbi sqlx.QueryerContext, ids []int64) (rt []model.Product, err error) {
	now := time.Now()

	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}

		ob := r.vec.WithLabelValues(r.name, "FindByIDs", result)
		ob.Observe(time.Since(now).Seconds())
	}()

	rt, err = r.repo.FindByIDs(ctx, dbi, ids)

	return
}
