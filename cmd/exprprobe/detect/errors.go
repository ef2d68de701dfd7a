package detect

import "fmt"

// ConfigError reports a requested instance number that the input cannot
// satisfy. Max carries the actual eligible count so a harness can clamp its
// next request instead of probing.
type ConfigError struct {
	// Instance is the requested 1-based ordinal.
	Instance int
	// Max is the number of eligible expressions actually present.
	Max int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid instance number %d: exceeds the maximum (%d)", e.Instance, e.Max)
}

// InternalError reports an inconsistency inside the engine itself, such as
// a selected expression that was lost before rewriting. It always indicates
// a bug, never bad input.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}

func internalf(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
