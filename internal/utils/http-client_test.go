package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientHeadersAndCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != ToolUserAgent {
			t.Errorf("expected user agent %s, got %s", ToolUserAgent, got)
		}
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Errorf("expected X-Test header, got %q", got)
		}
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			t.Errorf("expected session cookie: %v", err)
		} else if cookie.Value != "abc" {
			t.Errorf("expected session cookie 'abc', got %s", cookie.Value)
		}
	}))
	defer server.Close()

	client := NewHTTPClient(HTTPClientConfig{Headers: map[string]string{"X-Test": "yes"}})
	client.SetCookie(SessionCookieName, "abc")
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	stream := client.Streaming()
	if stream.client.Timeout != 0 {
		t.Errorf("expected streaming client without timeout, got %s", stream.client.Timeout)
	}
	if stream.Cookie(SessionCookieName) != "abc" {
		t.Error("expected streaming client to carry the session cookie")
	}
}

func TestHTTPClientClearCookie(t *testing.T) {
	client := NewHTTPClient(HTTPClientConfig{})
	client.SetCookie(SessionCookieName, "abc")
	client.SetCookie(SessionCookieName, "")
	if client.Cookie(SessionCookieName) != "" {
		t.Error("expected cookie to be cleared")
	}
}
