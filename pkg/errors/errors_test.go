package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeValidationFailed:     http.StatusBadRequest,
		CodeGenerationInProgress: http.StatusConflict,
		CodeMalformedResponse:    http.StatusBadGateway,
		CodeLLMProviderError:     http.StatusBadGateway,
		CodeSheetNotFound:        http.StatusNotFound,
		CodeDatabaseError:        http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := New(code, "x").HTTPStatus; got != want {
			t.Fatalf("code %s: got=%d want=%d", code, got, want)
		}
	}
}

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	e := ErrSheetNotFound.WithDetail("abc")
	if e.Detail != "abc" {
		t.Fatalf("detail not set")
	}
	if ErrSheetNotFound.Detail != "" {
		t.Fatalf("predefined error mutated: %q", ErrSheetNotFound.Detail)
	}
}

func TestAsAppErrorUnwrapsChain(t *testing.T) {
	base := New(CodeGenerationInProgress, "busy")
	wrapped := fmt.Errorf("handler: %w", base)
	if !IsAppError(wrapped) {
		t.Fatalf("expected wrapped AppError to be detected")
	}
	if got := AsAppError(wrapped); got.Code != CodeGenerationInProgress {
		t.Fatalf("unexpected code: %s", got.Code)
	}
	if got := AsAppError(stderrors.New("plain")); got.Code != CodeUnknown {
		t.Fatalf("unexpected code for plain error: %s", got.Code)
	}
}
