package counter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// RequestSpec is the fully determined HTTP request for one operation.
// It is built once per invocation and read-only afterwards.
type RequestSpec struct {
	URL     string
	Method  string
	Headers map[string]string
}

// BuildRequest maps validated parameters to the request for the target
// operation. It is a pure function: no I/O, deterministic for given
// inputs. The admin credential travels only in the Authorization header,
// never in the URL.
func BuildRequest(origin string, p *Params) (*RequestSpec, error) {
	path := fmt.Sprintf("/%s/%s/%s",
		p.Operation,
		url.PathEscape(p.Namespace),
		url.PathEscape(p.Key),
	)

	query := url.Values{}
	switch p.Operation {
	case OpCreate:
		initializer, err := parseCount(p.Initializer, 0)
		if err != nil {
			return nil, fmt.Errorf("invalid initializer: %w", err)
		}
		query.Set("initializer", strconv.FormatInt(initializer, 10))
	case OpSet, OpUpdate:
		value, err := parseCount(p.Value, 0)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %w", err)
		}
		query.Set("value", strconv.FormatInt(value, 10))
	}

	target := strings.TrimRight(origin, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	headers := map[string]string{
		"Accept": "application/json",
	}
	if p.Operation.IsAdmin() {
		headers["Authorization"] = "Bearer " + p.AdminKey
	}

	return &RequestSpec{
		URL:     target,
		Method:  p.Operation.Method(),
		Headers: headers,
	}, nil
}

// parseCount parses a decimal integer, falling back to def for the
// empty string.
func parseCount(raw string, def int64) (int64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
