package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records opsdesk metrics.
type Recorder interface {
	TaskIssued(command string, test bool)
	TransformFailed(chain string)
	StreamOpened(stream string)
	StreamClosed(stream string)
	StreamEventSent(stream string)
	TaskClaimed(won bool)
}

// Noop is a Recorder that doesn't record anything.
const Noop = noop(0)

type noop int

func (noop) TaskIssued(string, bool) {}
func (noop) TransformFailed(string)  {}
func (noop) StreamOpened(string)     {}
func (noop) StreamClosed(string)     {}
func (noop) StreamEventSent(string)  {}
func (noop) TaskClaimed(bool)        {}

const namespace = "opsdesk"

type prom struct {
	tasksIssued       *prometheus.CounterVec
	transformFailures *prometheus.CounterVec
	streamsOpen       *prometheus.GaugeVec
	streamEvents      *prometheus.CounterVec
	taskClaims        *prometheus.CounterVec
}

// NewPrometheus returns a Recorder registering its metrics on reg.
func NewPrometheus(reg prometheus.Registerer) Recorder {
	f := promauto.With(reg)
	return prom{
		tasksIssued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_issued_total",
			Help:      "Total tasks issued by command and test mode.",
		}, []string{"command", "test"}),
		transformFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_failures_total",
			Help:      "Total transform chain failures by chain kind.",
		}, []string{"chain"}),
		streamsOpen: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "streams_open",
			Help:      "Open notification streams.",
		}, []string{"stream"}),
		streamEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Total events sent to notification streams, heartbeats excluded.",
		}, []string{"stream"}),
		taskClaims: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_claims_total",
			Help:      "Total task claims by agents, lost claims are races with another poller.",
		}, []string{"result"}),
	}
}

func (p prom) TaskIssued(command string, test bool) {
	p.tasksIssued.WithLabelValues(command, strconv.FormatBool(test)).Inc()
}

func (p prom) TransformFailed(chain string) { p.transformFailures.WithLabelValues(chain).Inc() }
func (p prom) StreamOpened(stream string)   { p.streamsOpen.WithLabelValues(stream).Inc() }
func (p prom) StreamClosed(stream string)   { p.streamsOpen.WithLabelValues(stream).Dec() }
func (p prom) StreamEventSent(stream string) {
	p.streamEvents.WithLabelValues(stream).Inc()
}

func (p prom) TaskClaimed(won bool) {
	result := "won"
	if !won {
		result = "lost"
	}
	p.taskClaims.WithLabelValues(result).Inc()
}
