package plexo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errorutils "github.com/agrojardin/checkout/libs/errors"
)

var gatewayDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
	Name:       "plexo_client_duration_seconds",
	Help:       "plexo client runtime duration and result",
	MaxAge:     time.Minute,
	Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
},
	[]string{"instance_name", "method", "result"},
)

// InstrumentedClient decorates a Gateway with a prometheus summary.
type InstrumentedClient struct {
	name string
	cl   Gateway
	vec  *prometheus.SummaryVec
}

// NewInstrumentedClient returns cl decorated with duration metrics labelled name.
func NewInstrumentedClient(name string, cl Gateway) *InstrumentedClient {
	return &InstrumentedClient{name: name, cl: cl, vec: gatewayDuration}
}

func (_d *InstrumentedClient) ExpressCheckout(ctx context.Context, env *SignedEnvelope) (raw json.RawMessage, err error) {
	_since := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = string(errorutils.KindOf(err))
		}

		_d.vec.WithLabelValues(_d.name, "ExpressCheckout", result).Observe(time.Since(_since).Seconds())
	}()

	return _d.cl.ExpressCheckout(ctx, env)
}
