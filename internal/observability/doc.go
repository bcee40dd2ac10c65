// Package observability provides the alerting layer of the communication
// hub: threshold evaluation over agent and document state, duplicate
// suppression, durable alert logging, and dispatch to notification sinks.
// It also keeps an append-only JSONL event log of hub activity from which
// aggregate metrics are derived on demand.
package observability
