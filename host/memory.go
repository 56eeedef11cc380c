package host

import "fmt"

// Memory is an in-memory Host for tests. It records everything the
// action hands to the platform.
type Memory struct {
	Inputs      map[string]string
	Outputs     map[string]string
	OutputOrder []string
	Masked      []string
	Failures    []string
}

var _ Host = (*Memory)(nil)

// NewMemory creates an empty in-memory host with the given inputs
func NewMemory(inputs map[string]string) *Memory {
	if inputs == nil {
		inputs = map[string]string{}
	}
	return &Memory{
		Inputs:  inputs,
		Outputs: map[string]string{},
	}
}

// Input returns the configured input value
func (m *Memory) Input(name string) string {
	return m.Inputs[name]
}

// SetOutput records a named output
func (m *Memory) SetOutput(name, value string) error {
	if _, exists := m.Outputs[name]; !exists {
		m.OutputOrder = append(m.OutputOrder, name)
	}
	m.Outputs[name] = value
	return nil
}

// MaskSecret records a masked value
func (m *Memory) MaskSecret(value string) {
	if value == "" {
		return
	}
	m.Masked = append(m.Masked, value)
}

// Errorf records a reported failure
func (m *Memory) Errorf(format string, args ...any) {
	m.Failures = append(m.Failures, fmt.Sprintf(format, args...))
}
