package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shiftdesk/internal/domain/apperr"
)

func TestWriteErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.PermissionDenied("no"), http.StatusForbidden, "forbidden"},
		{apperr.InvalidRange("bad range"), http.StatusBadRequest, "invalid_range"},
		{apperr.InvalidState("already decided"), http.StatusConflict, "invalid_state"},
		{fmt.Errorf("wrapped: %w", apperr.Conflict("taken")), http.StatusConflict, "conflict"},
		{apperr.NotFound("missing"), http.StatusNotFound, "not_found"},
		{apperr.InsufficientBalance("short"), http.StatusUnprocessableEntity, "insufficient_balance"},
		{errors.New("pool exhausted"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(rec, tc.err, "req-1")
		if rec.Code != tc.status {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.status, rec.Code)
		}
		var env Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Success || env.Error == nil || env.Error.Code != tc.code || env.RequestID != "req-1" {
			t.Fatalf("%v: unexpected envelope %+v", tc.err, env)
		}
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("dial tcp 10.0.0.5:5432: refused"), "")
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Message != "internal error" {
		t.Fatalf("leaked message %q", env.Error.Message)
	}
}
