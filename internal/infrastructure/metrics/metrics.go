package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/qatledger/internal/domain"
)

// Metrics holds the ledger counters. They are fed by change events, so
// only committed mutations are counted.
type Metrics struct {
	Mutations        *prometheus.CounterVec
	StockMoved       *prometheus.CounterVec
	AssistantResults *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

// New creates the ledger metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qatledger_mutations_total",
				Help: "Committed ledger mutations by event type",
			},
			[]string{"event_type"},
		),
		StockMoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qatledger_stock_units_total",
				Help: "Inventory units moved by direction",
			},
			[]string{"direction"},
		),
		AssistantResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qatledger_assistant_proposals_total",
				Help: "Assistant proposals by outcome",
			},
			[]string{"outcome"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qatledger_balance_cache_lookups_total",
				Help: "Balance cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// Observe counts one committed change. It satisfies the event subscriber
// signature and never fails.
func (m *Metrics) Observe(_ context.Context, event domain.ChangeEvent) error {
	m.Mutations.WithLabelValues(event.EventType).Inc()

	switch {
	case event.StockDelta > 0:
		m.StockMoved.WithLabelValues("in").Add(float64(event.StockDelta))
	case event.StockDelta < 0:
		m.StockMoved.WithLabelValues("out").Add(float64(-event.StockDelta))
	}

	return nil
}

// ObserveProposal counts an assistant proposal outcome: "accepted" or
// "rejected".
func (m *Metrics) ObserveProposal(err error) {
	if err != nil {
		m.AssistantResults.WithLabelValues("rejected").Inc()
		return
	}
	m.AssistantResults.WithLabelValues("accepted").Inc()
}
