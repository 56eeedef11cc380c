package counter

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Output is one named value emitted to the host platform. Sensitive
// outputs must be registered with the platform's secret masking before
// they are emitted anywhere.
type Output struct {
	Name      string
	Value     string
	Sensitive bool
}

// ServiceError is a terminal failure reported by the counter service.
// Its message always names the operation for context.
type ServiceError struct {
	Operation  Operation
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s (operation: %s)", e.Message, e.Operation)
}

// Interpret turns a raw HTTP response into the operation's named outputs,
// or into a *ServiceError for non-2xx statuses.
func Interpret(op Operation, statusCode int, body []byte) ([]Output, error) {
	payload := decodePayload(body)

	if statusCode < 200 || statusCode >= 300 {
		return nil, &ServiceError{
			Operation:  op,
			StatusCode: statusCode,
			Message:    errorMessage(payload, statusCode),
		}
	}

	outputs := make([]Output, 0, 6)
	appendField := func(name string, sensitive bool) {
		if raw, ok := payload[name]; ok && raw != nil {
			outputs = append(outputs, Output{Name: name, Value: formatValue(raw), Sensitive: sensitive})
		}
	}

	appendField("value", false)

	switch op {
	case OpCreate:
		appendField("namespace", false)
		appendField("key", false)
		appendField("admin_key", true)
	case OpInfo:
		appendField("exists", false)
		appendField("expires_in", false)
		appendField("expires_str", false)
		appendField("full_key", false)
		appendField("is_genuine", false)
	case OpDelete:
		appendField("status", false)
		appendField("message", false)
	}

	return outputs, nil
}

// decodePayload reads the response body defensively. An empty body is an
// empty mapping; a body that is not valid JSON becomes {"error": <raw>}
// so the text still surfaces in error messages.
func decodePayload(body []byte) map[string]any {
	if len(body) == 0 {
		return map[string]any{}
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return map[string]any{"error": string(body)}
	}
	return payload
}

func errorMessage(payload map[string]any, statusCode int) string {
	if msg, ok := payload["error"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("counter service returned status %d", statusCode)
}

// formatValue renders a decoded JSON value as output text. Integral
// numbers render without a decimal point.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}
