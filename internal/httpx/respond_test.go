package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantJSON   string
		wantHeader string
	}{
		{
			name:       "simple struct",
			status:     http.StatusOK,
			data:       map[string]string{"message": "hello"},
			wantStatus: http.StatusOK,
			wantJSON:   `{"message":"hello"}`,
			wantHeader: "application/json",
		},
		{
			name:       "status payload",
			status:     http.StatusOK,
			data:       map[string]any{"ok": true, "clicks": 42},
			wantStatus: http.StatusOK,
			wantJSON:   `{"clicks":42,"ok":true}`,
			wantHeader: "application/json",
		},
		{
			name:   "nested struct",
			status: http.StatusOK,
			data: map[string]any{
				"stats": map[string]any{
					"slug":   "promo",
					"clicks": 7,
				},
			},
			wantStatus: http.StatusOK,
			wantJSON:   `{"stats":{"clicks":7,"slug":"promo"}}`,
			wantHeader: "application/json",
		},
		{
			name:       "empty object",
			status:     http.StatusOK,
			data:       map[string]string{},
			wantStatus: http.StatusOK,
			wantJSON:   `{}`,
			wantHeader: "application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			WriteJSON(rr, tt.status, tt.data)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}

			if ct := rr.Header().Get("Content-Type"); ct != tt.wantHeader {
				t.Errorf("expected Content-Type %q, got %q", tt.wantHeader, ct)
			}

			// Normalize JSON for comparison (handles field ordering)
			var got, want any
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if err := json.Unmarshal([]byte(tt.wantJSON), &want); err != nil {
				t.Fatalf("failed to unmarshal expected JSON: %v", err)
			}

			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(want)

			if string(gotJSON) != string(wantJSON) {
				t.Errorf("expected JSON %s, got %s", wantJSON, gotJSON)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		code        string
		message     string
		details     any
		wantStatus  int
		wantError   string
		wantMessage string
		wantDetails any
	}{
		{
			name:        "simple error",
			status:      http.StatusBadRequest,
			code:        "invalid_input",
			message:     "day must be YYYY-MM-DD",
			details:     nil,
			wantStatus:  http.StatusBadRequest,
			wantError:   "invalid_input",
			wantMessage: "day must be YYYY-MM-DD",
			wantDetails: nil,
		},
		{
			name:        "forbidden without detail",
			status:      http.StatusForbidden,
			code:        "forbidden",
			message:     "forbidden",
			details:     nil,
			wantStatus:  http.StatusForbidden,
			wantError:   "forbidden",
			wantMessage: "forbidden",
			wantDetails: nil,
		},
		{
			name:        "error with empty message",
			status:      http.StatusNotFound,
			code:        "not_found",
			message:     "",
			details:     nil,
			wantStatus:  http.StatusNotFound,
			wantError:   "not_found",
			wantMessage: "",
			wantDetails: nil,
		},
		{
			name:        "error with details map",
			status:      http.StatusInternalServerError,
			code:        "storage_error",
			message:     "click store unavailable",
			details:     map[string]string{"op": "store.Recent"},
			wantStatus:  http.StatusInternalServerError,
			wantError:   "storage_error",
			wantMessage: "click store unavailable",
			wantDetails: map[string]any{"op": "store.Recent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			WriteError(rr, tt.status, tt.code, tt.message, tt.details)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}

			var response ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if response.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, response.Error)
			}

			if response.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, response.Message)
			}

			// Compare details as JSON to handle type conversions
			if tt.wantDetails != nil {
				gotJSON, _ := json.Marshal(response.Details)
				wantJSON, _ := json.Marshal(tt.wantDetails)
				if string(gotJSON) != string(wantJSON) {
					t.Errorf("expected details %s, got %s", wantJSON, gotJSON)
				}
			} else if response.Details != nil {
				t.Errorf("expected nil details, got %v", response.Details)
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{
			name:       "kill confirmation",
			status:     http.StatusOK,
			body:       "killed",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unkill confirmation",
			status:     http.StatusOK,
			body:       "unkilled",
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty body",
			status:     http.StatusOK,
			body:       "",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			WriteText(rr, tt.status, tt.body)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
				t.Errorf("unexpected Content-Type %q", ct)
			}
			if got := rr.Body.String(); got != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, got)
			}
		})
	}
}

func TestErrorResponse_JSONMarshaling(t *testing.T) {
	resp := ErrorResponse{
		Error:   "test_error",
		Message: "test message",
		Details: map[string]string{"key": "value"},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var unmarshaled ErrorResponse
	if err := json.Unmarshal(data, &unmarshaled); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if unmarshaled.Error != resp.Error {
		t.Errorf("expected error %q, got %q", resp.Error, unmarshaled.Error)
	}
	if unmarshaled.Message != resp.Message {
		t.Errorf("expected message %q, got %q", resp.Message, unmarshaled.Message)
	}
}
