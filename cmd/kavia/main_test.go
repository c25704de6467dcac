package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunPrintsCallOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()
	t.Setenv("STORAGE_TYPE", "none")
	t.Setenv("PUBLISHERS_FILE", "")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--api-base", srv.URL, "health"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v (stderr %s)", err, stderr.String())
	}
	if got := stdout.String(); got != "{\n  \"status\": \"ok\"\n}\n" {
		t.Fatalf("stdout = %q", got)
	}
}

func TestRunReportsBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	t.Setenv("STORAGE_TYPE", "none")
	t.Setenv("PUBLISHERS_FILE", "")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--api-base", srv.URL, "welcome"}, &stdout, &stderr)
	if !errors.Is(err, errCallFailed) {
		t.Fatalf("expected errCallFailed, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Request failed with status 500: boom") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunPrintsBase(t *testing.T) {
	t.Setenv("API_BASE", "http://example.test/prefix")
	t.Setenv("STORAGE_TYPE", "none")
	t.Setenv("PUBLISHERS_FILE", "")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"base"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout.String() != "http://example.test/prefix\n" {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "none")
	t.Setenv("PUBLISHERS_FILE", "")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"status"}, &stdout, &stderr); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}
