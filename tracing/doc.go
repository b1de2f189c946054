// Package tracing integrates OpenTelemetry with the execution core. Operator
// executions become spans, channel depth changes and deadline misses become
// span events. All instrumentation is kept in a separate package so that
// applications which do not require tracing can exclude it from their build.
package tracing
