/*
Package observability exports editor and API activity as Prometheus metrics.

Metrics turns editor lifecycle events into counters through domain.LifecycleHooks,
and records HTTP request counts and latencies for the API adapter.
*/
package observability
