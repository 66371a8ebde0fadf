package monitor

import (
	"github.com/oddbit-project/batchcore/batch"
	"github.com/oddbit-project/batchcore/provider/httpserver"
	"github.com/oddbit-project/batchcore/provider/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Mount wires registry onto an existing httpserver.Server: the JSON job
// endpoints under jobPrefix (see RegisterRoutes) plus a Prometheus
// /metrics endpoint exporting the same counters as gauges, grounded on
// blueprint/provider/prometheus.Register. extra lets the caller fold in
// its own collectors alongside the registry's.
func Mount(server *httpserver.Server, registry *batch.Registry, jobPrefix, metricsEndpoint string, extra ...prom.Collector) *prom.Registry {
	RegisterRoutes(server.Router, registry, jobPrefix)
	collectors := append([]prom.Collector{NewCollector(registry)}, extra...)
	return prometheus.Register(server, metricsEndpoint, collectors...)
}
