package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwhyun/finbot/internal/chat"
)

func TestHealthz(t *testing.T) {
	s := New(Config{Port: 0}, chat.NewHandler(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", got)
	}
}
