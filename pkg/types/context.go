package types

// ContextKey is the type for context values the telemetry layer reads when
// attributing log records.
type ContextKey string

const (
	// ContextKeyNetworkID carries the identifier of the network being mutated.
	ContextKeyNetworkID ContextKey = "network_id"
	// ContextKeyOperation carries the operation name (add_variable, unroll, ...).
	ContextKeyOperation ContextKey = "operation"
	// ContextKeyRequestSource carries where the request came from (cli, http).
	ContextKeyRequestSource ContextKey = "request_source"
)
