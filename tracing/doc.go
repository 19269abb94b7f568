// Package tracing wraps OpenTelemetry so the simulator can emit one span per
// dispatch. Without Init every span is a no-op.
package tracing
