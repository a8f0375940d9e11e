package ir

// Version constants recorded alongside sessions.
const (
	// EventVersion is the schema version of persisted event payloads.
	EventVersion = "1"

	// EngineVersion is the reducer version. Bump it whenever a handler's
	// arithmetic changes, since recorded fingerprints stop matching.
	EngineVersion = "0.1.0"
)
