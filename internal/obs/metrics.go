package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yanun0323/errors"
)

const namespace = "bondflow"

// Metrics collects pipeline counters on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	recordsRead     *prometheus.CounterVec
	recordsRejected *prometheus.CounterVec
	storeIngests    *prometheus.CounterVec
	storeNotifies   *prometheus.CounterVec
	algoDecisions   *prometheus.CounterVec
	ordersRouted    *prometheus.CounterVec
	tradesBooked    *prometheus.CounterVec
	riskBreaches    *prometheus.CounterVec
	sinkWrites      *prometheus.CounterVec
	sinkErrors      *prometheus.CounterVec
	guiThrottled    prometheus.Counter
}

// NewMetrics allocates a metrics container with its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recordsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Input records accepted per source.",
		}, []string{"source"}),
		recordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Input records rejected per source.",
		}, []string{"source"}),
		storeIngests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_ingests_total",
			Help:      "Entities stored and fanned out per store.",
		}, []string{"store"}),
		storeNotifies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_notifies_total",
			Help:      "Listener fan-outs per store.",
		}, []string{"store"}),
		algoDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "algo_decisions_total",
			Help:      "Algo execution orders per side.",
		}, []string{"side"}),
		ordersRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_routed_total",
			Help:      "Execution orders routed per market.",
		}, []string{"market"}),
		tradesBooked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_booked_total",
			Help:      "Trades booked per origin.",
		}, []string{"origin"}),
		riskBreaches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_limit_breaches_total",
			Help:      "Aggregate PV01 limit breaches per product.",
		}, []string{"product"}),
		sinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Lines written per sink.",
		}, []string{"sink"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed or dropped writes per sink.",
		}, []string{"sink"}),
		guiThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gui_throttled_total",
			Help:      "Quotes not forwarded to the GUI file.",
		}),
	}
	m.registry.MustRegister(
		m.recordsRead,
		m.recordsRejected,
		m.storeIngests,
		m.storeNotifies,
		m.algoDecisions,
		m.ordersRouted,
		m.tradesBooked,
		m.riskBreaches,
		m.sinkWrites,
		m.sinkErrors,
		m.guiThrottled,
	)
	return m
}

// Registry exposes the private registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordRead(source string) {
	if m == nil {
		return
	}
	m.recordsRead.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordRejected(source string) {
	if m == nil {
		return
	}
	m.recordsRejected.WithLabelValues(source).Inc()
}

func (m *Metrics) StoreIngested(store string) {
	if m == nil {
		return
	}
	m.storeIngests.WithLabelValues(store).Inc()
}

func (m *Metrics) StoreNotified(store string) {
	if m == nil {
		return
	}
	m.storeNotifies.WithLabelValues(store).Inc()
}

func (m *Metrics) AlgoDecision(side string) {
	if m == nil {
		return
	}
	m.algoDecisions.WithLabelValues(side).Inc()
}

func (m *Metrics) OrderRouted(market string) {
	if m == nil {
		return
	}
	m.ordersRouted.WithLabelValues(market).Inc()
}

func (m *Metrics) TradeBooked(origin string) {
	if m == nil {
		return
	}
	m.tradesBooked.WithLabelValues(origin).Inc()
}

func (m *Metrics) RiskLimitBreached(productID string) {
	if m == nil {
		return
	}
	m.riskBreaches.WithLabelValues(productID).Inc()
}

func (m *Metrics) SinkWritten(sink string) {
	if m == nil {
		return
	}
	m.sinkWrites.WithLabelValues(sink).Inc()
}

func (m *Metrics) SinkFailed(sink string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(sink).Inc()
}

func (m *Metrics) GUIThrottled() {
	if m == nil {
		return
	}
	m.guiThrottled.Inc()
}

// WriteTextfile dumps the registry in the text exposition format, suitable
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "write metrics textfile %s", path)
	}
	return nil
}
