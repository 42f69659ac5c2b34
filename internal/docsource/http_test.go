package docsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lunalabs/intakeflow/internal/domain"
)

func TestHTTPSource_FetchBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "abc123" {
			t.Errorf("request id = %q, want %q", got, "abc123")
		}
		_, _ = w.Write([]byte("%PDF-1.4 payload"))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/download?id={id}", 0)

	data, err := src.FetchBytes(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FetchBytes() error: %v", err)
	}
	if string(data) != "%PDF-1.4 payload" {
		t.Errorf("FetchBytes() = %q", data)
	}
}

func TestHTTPSource_FetchBytes_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/download?id={id}", 0)

	_, err := src.FetchBytes(context.Background(), "abc123")
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Errorf("FetchBytes() error = %v, want ErrFetchFailed", err)
	}
}

func TestHTTPSource_FetchBytes_Unreachable(t *testing.T) {
	src := NewHTTPSource("http://127.0.0.1:1/download?id={id}", 0)

	_, err := src.FetchBytes(context.Background(), "abc123")
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Errorf("FetchBytes() error = %v, want ErrFetchFailed", err)
	}
}
