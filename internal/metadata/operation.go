package metadata

import (
	"fmt"
	"strings"

	"vidmeta/internal/services"
)

// Operation selects which derived shape a request produces.
type Operation string

const (
	OperationExtract    Operation = "extractMetadata"
	OperationDuration   Operation = "getDuration"
	OperationResolution Operation = "getResolution"
)

// Operations lists every supported operation in display order.
func Operations() []Operation {
	return []Operation{OperationExtract, OperationDuration, OperationResolution}
}

// ParseOperation matches name case-insensitively against the supported
// operations.
func ParseOperation(name string) (Operation, error) {
	trimmed := strings.TrimSpace(name)
	for _, op := range Operations() {
		if strings.EqualFold(trimmed, string(op)) {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: unknown operation %q", services.ErrValidation, name)
}

func (o Operation) String() string {
	return string(o)
}
