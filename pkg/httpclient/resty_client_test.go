package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientDoSendsMethodHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "payload" {
			t.Errorf("body = %q", body)
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewRestyClient(2 * time.Second)
	resp, err := client.Do(context.Background(), Request{
		Method:  "put",
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "1"},
		Body:    []byte("payload"),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusAccepted {
		t.Fatalf("StatusCode = %d", resp.StatusCode())
	}
	if string(resp.Body()) != "ok" {
		t.Fatalf("Body = %q", resp.Body())
	}
	if got := resp.Header("content-type"); got != "text/plain" {
		t.Fatalf("Header(content-type) = %q", got)
	}
}

func TestRestyClientDoDefaultsToGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Do(context.Background(), Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("non-2xx should not be a transport error: %v", err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("StatusCode = %d", resp.StatusCode())
	}
}

func TestRestyClientDoTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewRestyClient(time.Second).Do(context.Background(), Request{URL: url}); err == nil {
		t.Fatalf("expected error for closed server")
	}
}
