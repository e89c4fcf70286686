// Package observability provides the diagnostic logger, the append-only JSON
// Lines event log, and metrics derived on demand from that log.
package observability
