// Package metric provides Prometheus-based metrics collection and an HTTP server
// for streampump monitoring.
//
// The package offers a centralized registry managing core platform metrics
// (events processed and dropped, processing duration, segment construction) and
// service-specific metrics registered through MetricsRegistrar.
//
// # Profiler Counters
//
// Every processor spliced into a pipeline by the segment builder gets a
// ProfilerCounter: an accumulated duration and a run count tagged with the
// processor id and the pipeline id. Analyzers get a second counter under the
// "analyzer" tag key. Counters are Prometheus gauges so they can be reset when the
// pipeline raises its profiler reset signal:
//
//	counter, err := registry.CreateProfilerCounter(metric.ProfilerTagProcessor, "enricher", "main")
//	start := time.Now()
//	// ... process ...
//	counter.Add(time.Since(start))
//	counter.Reset()
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//	go func() { _ = server.Start() }()
//	defer server.Stop(ctx)
//
// Prometheus-formatted metrics are exposed at http://localhost:9090/metrics and a
// health check at http://localhost:9090/health.
//
// # Thread Safety
//
// Registration is guarded by a mutex. Recording values uses Prometheus' lock-free
// collectors and is safe from any goroutine.
package metric
