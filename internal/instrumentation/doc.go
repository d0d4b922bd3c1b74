// Package instrumentation provides OpenTelemetry metrics and tracing
// for the scheduling service.
//
// The Provider wires a meter provider (Prometheus, OTLP, or stdout
// exporter) and a tracer provider (OTLP, stdout, or none), and exposes
// a Metrics recorder used by the HTTP boundary, the provider clients,
// and the scheduling orchestrator. All recorder methods are safe to
// call on an uninitialized Metrics value, so instrumentation can be
// disabled without sprinkling nil checks through call sites.
package instrumentation
