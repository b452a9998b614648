package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/choreboard/internal/apperr"
)

func TestWriteErrorStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		err    error
		status int
		reason string
	}{
		{apperr.New(apperr.InvalidEffort, "effort 9"), http.StatusBadRequest, "invalid_effort"},
		{apperr.New(apperr.NotAssigned, "task 1"), http.StatusForbidden, "not_assigned"},
		{apperr.New(apperr.AlreadyDoneByOther, "task 1"), http.StatusConflict, "already_done_by_other"},
		{apperr.New(apperr.RewardNotFound, "reward 2"), http.StatusNotFound, "reward_not_found"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, logger, tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body errorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.reason {
				t.Errorf("error = %q, want %q", body.Error, tt.reason)
			}
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()
	writeError(rec, logger, errors.New("select from users: secret detail"))
	if strings.Contains(rec.Body.String(), "secret") {
		t.Errorf("body leaks cause: %s", rec.Body)
	}
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/tasks/x", nil)
	req.SetPathValue("id", "x")
	rec := httptest.NewRecorder()
	if _, ok := pathID(rec, req); ok {
		t.Fatal("expected pathID to reject a non-numeric id")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	req.SetPathValue("id", "42")
	id, ok := pathID(httptest.NewRecorder(), req)
	if !ok || id != 42 {
		t.Errorf("pathID = %d, %v", id, ok)
	}
}

func TestIsDigits(t *testing.T) {
	for s, want := range map[string]bool{"1234": true, "12a4": false, "": true, "０１２３": false} {
		if got := isDigits(s); got != want {
			t.Errorf("isDigits(%q) = %v, want %v", s, got, want)
		}
	}
}
