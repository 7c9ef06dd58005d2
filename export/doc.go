// Package export persists finished run results outside the process.
//
// The Runner returns results as plain values; exporters turn them into
// durable records (one JSON document per run) without the runner knowing
// where they end up. Implementations here cover local files and an
// in-process collector for tests and examples. Callers should depend on the
// Exporter interface rather than concrete types so storage backends can be
// swapped without touching calling code.
package export
