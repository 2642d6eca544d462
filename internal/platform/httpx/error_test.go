package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/absign/storefront/internal/platform/requestctx"
)

func TestWriteErrorEnvelope(t *testing.T) {
	ctx := requestctx.WithTrace(context.Background(), requestctx.TraceInfo{TraceID: "abc123"})
	rec := httptest.NewRecorder()

	WriteError(ctx, rec, NewError("not_found", "product\nnot found", http.StatusNotFound).WithDetails(map[string]any{"id": "42"}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "not_found" || body["message"] != "product not found" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["trace_id"] != "abc123" || body["id"] != "42" {
		t.Fatalf("expected trace id and details, got %v", body)
	}
	if _, ok := body["request_id"]; ok {
		t.Fatalf("did not expect request id without middleware")
	}
}

func TestWriteValidationErrorUsesFirstOrderedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	fields := FieldErrors{}
	fields.Add("message", "Please provide a message.")
	fields.Add("email", "Please provide your email address.")

	WriteValidationError(rec, fields, []string{"name", "email", "message"})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "Please provide your email address." {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if len(body.Errors) != 2 {
		t.Fatalf("unexpected errors %v", body.Errors)
	}
}
