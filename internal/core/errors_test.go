package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHasCode(t *testing.T) {
	inner := NewSourceFetchError("android-blog", errors.New("connection refused"))
	outer := NewWriteConflictError("insert failed", fmt.Errorf("tx: %w", inner))

	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{"direct", inner, ErrCodeSourceFetch, true},
		{"wrapped by fmt", fmt.Errorf("crawl: %w", inner), ErrCodeSourceFetch, true},
		{"outer code", outer, ErrCodeWriteConflict, true},
		{"nested code", outer, ErrCodeSourceFetch, true},
		{"absent code", outer, ErrCodeNotFound, false},
		{"plain error", errors.New("boom"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	sentinel := errors.New("no categories")
	err := NewCategorizationExhaustedError("cannot resolve a category", sentinel)

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is did not reach the wrapped sentinel")
	}
	if got := err.Error(); got != "CATEGORIZATION_EXHAUSTED: cannot resolve a category (no categories)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestGetHTTPStatusCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeWriteConflict, http.StatusConflict},
		{ErrCodeSourceFetch, http.StatusBadGateway},
		{ErrCodeDatabase, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := GetHTTPStatusCode(NewAppError(tt.code, "x", nil)); got != tt.want {
			t.Errorf("GetHTTPStatusCode(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestHandleError(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleError(rec, fmt.Errorf("lookup: %w", NewNotFoundError("source not found", nil)))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}

		var body struct {
			Error   AppError `json:"error"`
			Success bool     `json:"success"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Success || body.Error.Code != ErrCodeNotFound || body.Error.Message != "source not found" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleError(rec, errors.New("boom"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}
