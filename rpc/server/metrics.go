package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

// commandMetrics are the per command series
type commandMetrics struct {
	calls    *metrics.Counter
	duration *metrics.Histogram
}

// serverMetrics holds the metric set of one server. Every server has its own
// set, so several servers in one process (tests) do not collide.
type serverMetrics struct {
	set      *metrics.Set
	invalid  *metrics.Counter
	commands *xsync.MapOf[string, commandMetrics]
}

func newServerMetrics(t transport.IRPCServerTransport, st store.IStore) *serverMetrics {
	set := metrics.NewSet()

	set.NewGauge("rkv_connections_active", func() float64 {
		return float64(t.ActiveConnections())
	})
	set.NewGauge("rkv_keys", func() float64 {
		info, err := st.GetDBInfo()
		if err != nil {
			return 0
		}
		return float64(info.KeyCount)
	})
	set.NewGauge("rkv_expirations_pending", func() float64 {
		info, err := st.GetDBInfo()
		if err != nil {
			return 0
		}
		return float64(info.PendingExpirations)
	})

	return &serverMetrics{
		set:      set,
		invalid:  set.NewCounter("rkv_invalid_commands_total"),
		commands: xsync.NewMapOf[string, commandMetrics](),
	}
}

// observe counts one executed command and records its latency
func (m *serverMetrics) observe(name string, start time.Time) {
	if m == nil {
		return
	}
	cm, _ := m.commands.LoadOrCompute(name, func() commandMetrics {
		return commandMetrics{
			calls:    m.set.NewCounter(fmt.Sprintf(`rkv_commands_total{command=%q}`, name)),
			duration: m.set.NewHistogram(fmt.Sprintf(`rkv_command_duration_seconds{command=%q}`, name)),
		}
	})
	cm.calls.Inc()
	cm.duration.UpdateDuration(start)
}

func (m *serverMetrics) invalidCommand() {
	if m == nil {
		return
	}
	m.invalid.Inc()
}

// serve exposes the metrics in Prometheus text format on
// http://<endpoint>/metrics until ctx is cancelled
func (m *serverMetrics) serve(ctx context.Context, endpoint string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		m.set.WritePrometheus(w)
		metrics.WriteProcessMetrics(w)
	})

	srv := &http.Server{
		Addr:              endpoint,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	Logger.Infof("Serving metrics on http://%s/metrics", endpoint)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Logger.Errorf("Metrics endpoint failed: %v", err)
	}
}
