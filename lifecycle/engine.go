package lifecycle

import (
	"context"
	"strings"
)

// Engine is the narrow contract to the external broker engine. The
// orchestrator never constructs one; an implementation is injected at
// construction and selected exactly once, never a global.
//
// Responses are free-form text. The engine is expected to include a failure
// marker (see ResponseIndicatesFailure) when an operation does not take
// effect; a returned error is equally treated as a delegate failure.
type Engine interface {
	// Start launches the engine with the flattened configuration.
	Start(ctx context.Context, config map[string]string) (string, error)

	// Reload applies the flattened configuration to a running engine
	// without a restart.
	Reload(ctx context.Context, config map[string]string) (string, error)

	// Query retrieves monitoring or status text for a named operation,
	// optionally filtered. The orchestrator passes the text through
	// untouched.
	Query(ctx context.Context, operation, filter string) (string, error)

	// Shutdown stops the engine.
	Shutdown(ctx context.Context) error
}

// failureMarkers are matched case-insensitively as substrings of engine
// responses. This is a deliberately simple protocol: a legitimate value
// containing one of these words misclassifies success as failure, a known
// fragility accepted until the engine grows a structured envelope.
var failureMarkers = []string{"error", "failed", "exception", "invalid"}

// ResponseIndicatesFailure reports whether an engine response text should
// be treated as a delegate failure.
func ResponseIndicatesFailure(response string) bool {
	lower := strings.ToLower(response)
	for _, marker := range failureMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
