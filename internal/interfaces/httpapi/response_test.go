package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
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

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: password authentication failed for user bolao"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("internal error leaked to client: %s", rec.Body.String())
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name:       "closed by schedule",
			err:        fmt.Errorf("submit: %w", &usecase.PredictionsClosedError{MatchID: 1, State: lock.StateClosedBySchedule}),
			wantStatus: http.StatusConflict,
			wantReason: "predictionsClosedBySchedule",
		},
		{
			name:       "closed pending finalization",
			err:        &usecase.PredictionsClosedError{MatchID: 1, State: lock.StateClosedPendingFinalization},
			wantStatus: http.StatusConflict,
			wantReason: "predictionsClosedPendingFinalization",
		},
		{
			name:       "forbidden before unauthorized",
			err:        fmt.Errorf("%w: participant is banned", usecase.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantReason: "forbidden",
		},
		{
			name:       "unauthorized",
			err:        usecase.ErrUnauthorized,
			wantStatus: http.StatusUnauthorized,
			wantReason: "unauthorized",
		},
		{
			name:       "invalid outcome",
			err:        fmt.Errorf("%w: \"HOME\"", match.ErrInvalidOutcome),
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidOutcome",
		},
		{
			name:       "already finalized",
			err:        fmt.Errorf("%w: match=1", usecase.ErrAlreadyFinalized),
			wantStatus: http.StatusConflict,
			wantReason: "alreadyFinalized",
		},
		{
			name:       "not found",
			err:        usecase.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantReason: "notFound",
		},
		{
			name:       "rate limited",
			err:        errRateLimited,
			wantStatus: http.StatusTooManyRequests,
			wantReason: "rateLimitExceeded",
		},
		{
			name:       "storage failure",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantReason: "internalError",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(context.Background(), tc.err)
			if got.HTTPStatus != tc.wantStatus || got.Reason != tc.wantReason {
				t.Fatalf("mapError()=%+v want status=%d reason=%s", got, tc.wantStatus, tc.wantReason)
			}
		})
	}
}
