// Package host is the boundary to the automation platform that invokes
// the action: it supplies inputs, consumes named outputs, masks secrets,
// and reports failures. The rest of the action only sees the Host
// interface, so the core stays platform-free and testable.
package host

// Host abstracts the automation platform driving an invocation.
type Host interface {
	// Input returns the trimmed value of a named input, or "" when unset.
	Input(name string) string
	// SetOutput publishes a named output value.
	SetOutput(name, value string) error
	// MaskSecret registers a value with the platform's secret masking so
	// it never appears in logs. Must be called before the value is used
	// or emitted anywhere.
	MaskSecret(value string)
	// Errorf reports a failure message to the platform.
	Errorf(format string, args ...any)
}
