// Package observability provides the structured logger and the Prometheus
// instruments shared by the embedder job and the answer service.
//
// Metrics are registered on an injected prometheus.Registerer so tests can use
// a private registry; NopMetrics is used when metrics are disabled.
package observability
