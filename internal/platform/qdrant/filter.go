package qdrant

import "fmt"

// OperationError carries the failing operation and a stable code so
// callers can branch without string matching.
type OperationError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

const (
	OperationErrorValidation      = "validation"
	OperationErrorTimeout         = "timeout"
	OperationErrorTransportFailed = "transport_failed"
	OperationErrorQueryFailed     = "query_failed"
	OperationErrorEncodeFailed    = "encode_failed"
	OperationErrorDecodeFailed    = "decode_failed"
)

func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("qdrant %s: %s: %s: %v", e.Op, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("qdrant %s: %s: %s", e.Op, e.Code, e.Message)
}

func (e *OperationError) Unwrap() error { return e.Err }

func opErr(op, code, message string, err error) error {
	return &OperationError{Op: op, Code: code, Message: message, Err: err}
}

// translateFilter maps a flat equality filter to qdrant's must-match
// syntax. A nil or empty input yields nil so callers can omit the field.
func translateFilter(filter map[string]any) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	must := make([]map[string]any, 0, len(filter))
	for key, value := range filter {
		must = append(must, map[string]any{
			"key":   key,
			"match": map[string]any{"value": value},
		})
	}
	return map[string]any{"must": must}
}
