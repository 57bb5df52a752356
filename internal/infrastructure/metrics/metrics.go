package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Connections     prometheus.Gauge
	EventsRelayed   *prometheus.CounterVec
	DroppedMessages prometheus.Counter
	StreamRequests  *prometheus.CounterVec
	StreamBytes     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Connections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kinosync_ws_connections",
			Help: "Number of live WebSocket connections.",
		}),
		EventsRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kinosync_ws_events_relayed_total",
			Help: "Events relayed to room members, by event name.",
		}, []string{"event"}),
		DroppedMessages: factory.NewCounter(prometheus.CounterOpts{
			Name: "kinosync_ws_messages_dropped_total",
			Help: "Outbound messages dropped because a client buffer was full.",
		}),
		StreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kinosync_stream_requests_total",
			Help: "Media stream requests, by response status.",
		}, []string{"status"}),
		StreamBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "kinosync_stream_bytes_total",
			Help: "Bytes served by the media range endpoint.",
		}),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
