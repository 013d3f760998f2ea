package qdrant

import (
	"errors"
	"testing"
)

func TestTranslateFilterEmpty(t *testing.T) {
	if got := translateFilter(nil); got != nil {
		t.Errorf("translateFilter(nil) = %v", got)
	}
	if got := translateFilter(map[string]any{}); got != nil {
		t.Errorf("translateFilter(empty) = %v", got)
	}
}

func TestTranslateFilterMustMatch(t *testing.T) {
	got := translateFilter(map[string]any{"scope_key": "doc_7"})
	must, ok := got["must"].([]map[string]any)
	if !ok || len(must) != 1 {
		t.Fatalf("must = %v", got["must"])
	}
	if must[0]["key"] != "scope_key" {
		t.Errorf("key = %v", must[0]["key"])
	}
	match, ok := must[0]["match"].(map[string]any)
	if !ok || match["value"] != "doc_7" {
		t.Errorf("match = %v", must[0]["match"])
	}
}

func TestTranslateFilterMultipleConditions(t *testing.T) {
	got := translateFilter(map[string]any{"doc_id": int64(7), "user_id": int64(3)})
	must := got["must"].([]map[string]any)
	if len(must) != 2 {
		t.Fatalf("must = %v", must)
	}
}

func TestOperationErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := opErr("search", OperationErrorTransportFailed, "post failed", cause)
	if !errors.Is(err, cause) {
		t.Error("expected cause to unwrap")
	}
	var opError *OperationError
	if !errors.As(err, &opError) {
		t.Fatal("expected *OperationError")
	}
	if opError.Code != OperationErrorTransportFailed {
		t.Errorf("code = %q", opError.Code)
	}
}

func TestPointIDDeterministic(t *testing.T) {
	a := PointID("chunk", "42", "0")
	b := PointID("chunk", "42", "0")
	c := PointID("chunk", "42", "1")
	if a != b {
		t.Errorf("same parts gave %q and %q", a, b)
	}
	if a == c {
		t.Errorf("different parts gave the same id %q", a)
	}
}
