package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeValidation, "quantity must be at least 1")
	if err.Code() != CodeValidation {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Message() != "quantity must be at least 1" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if err.Error() != "VALIDATION_ERROR: quantity must be at least 1" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "publish event")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if As(err).Code() != CodeDependency {
		t.Fatalf("unexpected code %s", As(err).Code())
	}
}

func TestAsThroughWrappedChain(t *testing.T) {
	inner := New(CodeStateConflict, "sub-order already delivered")
	outer := fmt.Errorf("update status: %w", inner)
	typed := As(outer)
	if typed == nil || typed.Code() != CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", typed)
	}
	if !HasCode(outer, CodeStateConflict) {
		t.Fatal("HasCode should see the wrapped code")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", meta.HTTPStatus)
	}
}

func TestDetailsOnlyWhenSet(t *testing.T) {
	err := New(CodeValidation, "missing required variant group").
		WithDetails(map[string]any{"missing_groups": []string{"Size"}})
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if _, ok := details["missing_groups"]; !ok {
		t.Fatal("expected missing_groups detail")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeInternal, cause, "load order")
	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("unexpected dump code %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", dump.Chain)
	}
}
