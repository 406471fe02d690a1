package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetStatusConnected(t *testing.T) {
	_, srv := startFakeWordPress(t)
	cfg := newTestConfig(t, srv.URL)

	r := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()

	GetStatus(cfg)(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var resp statusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Configured || !resp.Connected {
		t.Errorf("got %+v, want configured and connected", resp)
	}
}

func TestGetStatusUnconfigured(t *testing.T) {
	cfg := newTestConfig(t, "")
	cfg.WordPress.SiteURL = ""

	r := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()

	GetStatus(cfg)(w, r)

	var resp statusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Configured || resp.Connected {
		t.Errorf("got %+v, want unconfigured", resp)
	}
	if resp.Error == "" {
		t.Error("expected an error explaining the missing configuration")
	}
}

func TestGetStatusUnreachableSite(t *testing.T) {
	cfg := newTestConfig(t, "http://127.0.0.1:1")

	r := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()

	GetStatus(cfg)(w, r)

	var resp statusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Configured {
		t.Error("credentials are set, status should report configured")
	}
	if resp.Connected {
		t.Error("unreachable site should not report connected")
	}
}
