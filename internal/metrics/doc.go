// Package metrics exposes rotation counters and gauges in Prometheus format.
//
// A Collector owns its own registry, so tests and multiple daemons in one
// process never collide on the global registry. All Record methods are safe
// on a nil *Collector, which lets callers run without metrics.
package metrics
