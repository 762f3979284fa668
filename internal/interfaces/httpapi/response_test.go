package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/roster-manager/internal/domain/roster"
	"github.com/riskibarqy/roster-manager/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_FieldLocation(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("%w: %w", usecase.ErrInvalidInput, &roster.FieldError{Field: "region", Err: roster.ErrInvalidRegion})
	writeError(context.Background(), rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil || body.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("expected INVALID_ARGUMENT error, got %+v", body.Error)
	}
	if item := body.Error.Errors[0]; item.Location != "region" || item.LocationType != "field" {
		t.Fatalf("expected region field location, got %+v", item)
	}
}

func TestWriteErrorWithData_KeepsCommittedResult(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErrorWithData(context.Background(), rec, fmt.Errorf("%w: disk full", usecase.ErrPersistence), map[string]string{"id": "team-1"})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["id"] != "team-1" {
		t.Fatalf("expected committed data in response, got %v", body["data"])
	}
	if _, ok := body["error"]; !ok {
		t.Fatalf("expected error key alongside data")
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{name: "invalid input", err: fmt.Errorf("%w: bad", usecase.ErrInvalidInput), wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{
			name:       "duplicate name",
			err:        fmt.Errorf("%w: %w", usecase.ErrInvalidInput, &roster.FieldError{Field: "name", Err: roster.ErrDuplicateName}),
			wantStatus: http.StatusBadRequest,
			wantReason: "duplicateName",
		},
		{name: "not found", err: fmt.Errorf("%w: team=x", usecase.ErrNotFound), wantStatus: http.StatusNotFound, wantReason: "notFound"},
		{name: "capacity", err: fmt.Errorf("%w: team=x", usecase.ErrCapacityExceeded), wantStatus: http.StatusConflict, wantReason: "capacityExceeded"},
		{name: "unauthorized", err: usecase.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantReason: "unauthorized"},
		{name: "persistence", err: fmt.Errorf("%w: save", usecase.ErrPersistence), wantStatus: http.StatusServiceUnavailable, wantReason: "persistenceFailed"},
		{name: "dependency", err: usecase.ErrDependencyUnavailable, wantStatus: http.StatusServiceUnavailable, wantReason: "dependencyUnavailable"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantReason: "internalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(context.Background(), tt.err)
			if got.HTTPStatus != tt.wantStatus || got.Reason != tt.wantReason {
				t.Fatalf("mapError(%v)=%+v want status=%d reason=%s", tt.err, got, tt.wantStatus, tt.wantReason)
			}
		})
	}
}
