// Package counter models the counter service's operations: validating
// caller input, building the request for an operation, and interpreting
// the service's JSON response into named outputs.
package counter

import (
	"fmt"
	"net/http"
	"strings"
)

// Operation identifies one of the counter service's endpoints.
type Operation string

const (
	OpHit    Operation = "hit"
	OpCreate Operation = "create"
	OpGet    Operation = "get"
	OpInfo   Operation = "info"
	OpSet    Operation = "set"
	OpUpdate Operation = "update"
	OpReset  Operation = "reset"
	OpDelete Operation = "delete"
)

// DefaultOperation is used when the caller does not name an operation.
const DefaultOperation = OpHit

// adminOps mutate counter state and require the admin credential.
var adminOps = map[Operation]bool{
	OpSet:    true,
	OpUpdate: true,
	OpReset:  true,
	OpDelete: true,
}

var readOps = map[Operation]bool{
	OpHit:    true,
	OpCreate: true,
	OpGet:    true,
	OpInfo:   true,
}

// ParseOperation maps a raw operation name to an Operation. An empty
// name resolves to DefaultOperation; an unknown name is an error that
// lists the valid set.
func ParseOperation(raw string) (Operation, error) {
	if raw == "" {
		return DefaultOperation, nil
	}

	op := Operation(raw)
	if !readOps[op] && !adminOps[op] {
		return "", fmt.Errorf("unknown operation %q (must be one of: %s)", raw, strings.Join(operationNames(), ", "))
	}
	return op, nil
}

// IsAdmin reports whether the operation mutates counter state and
// therefore requires the admin credential.
func (o Operation) IsAdmin() bool {
	return adminOps[o]
}

// Method returns the HTTP method for the operation: GET for reads,
// POST for admin operations.
func (o Operation) Method() string {
	if o.IsAdmin() {
		return http.MethodPost
	}
	return http.MethodGet
}

func (o Operation) String() string {
	return string(o)
}

func operationNames() []string {
	return []string{
		string(OpHit), string(OpCreate), string(OpGet), string(OpInfo),
		string(OpSet), string(OpUpdate), string(OpReset), string(OpDelete),
	}
}
