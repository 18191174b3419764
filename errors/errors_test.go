package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeTimeout, true},
		{ErrCodeServiceUnavailable, true},
		{ErrCodeExternalService, false},
		{ErrCodeConfiguration, false},
		{ErrCodeContractViolation, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "msg", http.StatusInternalServerError)
			if err.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, err.Retryable)
			}
		})
	}
}

func TestConfiguration(t *testing.T) {
	err := Configuration("speaker id %d out of range [0, %d)", 7, 2)
	if err.Code != ErrCodeConfiguration {
		t.Errorf("expected CONFIGURATION_ERROR, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.HTTPStatus)
	}
	if !strings.Contains(err.Message, "7") {
		t.Errorf("expected formatted message, got %q", err.Message)
	}
	if !IsConfiguration(err) {
		t.Error("expected IsConfiguration to be true")
	}
	if IsContractViolation(err) {
		t.Error("expected IsContractViolation to be false")
	}
}

func TestContractViolation(t *testing.T) {
	err := ContractViolation("inferred length %d != %d", 10, 12)
	if err.Code != ErrCodeContractViolation {
		t.Errorf("expected CONTRACT_VIOLATION, got %s", err.Code)
	}
	if err.Retryable {
		t.Error("contract violations must not be retryable")
	}
	wrapped := fmt.Errorf("process block: %w", err)
	if !IsContractViolation(wrapped) {
		t.Error("expected IsContractViolation to see through wrapping")
	}
}

func TestExternalServiceError(t *testing.T) {
	cause := stderrors.New("out of memory")
	err := ExternalServiceError("remote", cause)
	if err.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", err.HTTPStatus)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	if err.Details["service"] != "remote" {
		t.Errorf("expected service=remote, got %v", err.Details["service"])
	}
	if !strings.Contains(err.Error(), "out of memory") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestNotFound_EmptyID(t *testing.T) {
	err := NotFound("device", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestWithDetail(t *testing.T) {
	err := InvalidInput("speaker", "empty").WithDetail("value", "")
	if err.Details["field"] != "speaker" {
		t.Errorf("expected field=speaker, got %v", err.Details["field"])
	}
	if _, ok := err.Details["value"]; !ok {
		t.Error("expected value detail to be set")
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("expected plain error not to convert")
	}
	appErr, ok := AsAppError(fmt.Errorf("wrap: %w", Timeout("synthesize")))
	if !ok {
		t.Fatal("expected wrapped AppError to convert")
	}
	if appErr.Code != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", appErr.Code)
	}
}

func TestToResponse(t *testing.T) {
	resp := Configuration("bad").ToResponse()
	if resp.Error.Code != ErrCodeConfiguration {
		t.Errorf("expected CONFIGURATION_ERROR, got %s", resp.Error.Code)
	}
	if resp.Error.Message != "bad" {
		t.Errorf("expected message 'bad', got %q", resp.Error.Message)
	}
}
