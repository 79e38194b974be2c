package httpx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChain_Order(t *testing.T) {
	var calls []string
	mark := func(name string) func(http.RoundTripper) http.RoundTripper {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				calls = append(calls, name)
				return next.RoundTrip(r)
			})
		}
	}
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls = append(calls, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})

	rt := Chain(base, mark("outer"), mark("inner"))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}

	want := "outer,inner,base"
	if got := strings.Join(calls, ","); got != want {
		t.Errorf("Expected call order %s, got %s", want, got)
	}
}

func TestChain_NilBaseUsesDefaultTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Chain(nil)}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
}

func TestRequestIDTransport(t *testing.T) {
	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get(RequestIDHeader)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Chain(nil, RequestIDTransport)}

	tests := []struct {
		name   string
		ctx    context.Context
		header string
		want   string
	}{
		{name: "generated", ctx: context.Background()},
		{name: "from context", ctx: ContextWithRequestID(context.Background(), "ctx-id"), want: "ctx-id"},
		{name: "explicit header wins", ctx: ContextWithRequestID(context.Background(), "ctx-id"), header: "hdr-id", want: "hdr-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequestWithContext(tt.ctx, http.MethodGet, srv.URL, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			resp.Body.Close()

			got := <-seen
			if got == "" {
				t.Fatal("Expected a request id header")
			}
			if tt.want != "" && got != tt.want {
				t.Errorf("Expected request id %s, got %s", tt.want, got)
			}
			if tt.header == "" && req.Header.Get(RequestIDHeader) != "" {
				t.Error("Expected the caller's request to be left untouched")
			}
		})
	}
}

func TestAccessLogTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/boom":
			w.WriteHeader(http.StatusBadGateway)
			return
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &http.Client{Transport: Chain(nil, RequestIDTransport, AccessLogTransport(logger))}

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("Get %s: %v", path, err)
		}
		resp.Body.Close()
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 access lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "level=DEBUG") || !strings.Contains(lines[0], "path=/ok") || !strings.Contains(lines[0], "status=200") {
		t.Errorf("Unexpected line for /ok: %s", lines[0])
	}
	if !strings.Contains(lines[1], "level=DEBUG") || !strings.Contains(lines[1], "status=404") {
		t.Errorf("Expected client errors at DEBUG, got %s", lines[1])
	}
	if !strings.Contains(lines[2], "level=WARN") || !strings.Contains(lines[2], "status=502") {
		t.Errorf("Unexpected line for /boom: %s", lines[2])
	}
	for _, l := range lines {
		if !strings.Contains(l, "request_id=") || strings.Contains(l, "request_id= ") {
			t.Errorf("Expected a request id in %s", l)
		}
	}
}

func TestAccessLogTransport_TransportError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	boom := errors.New("dial failed")
	base := RoundTripperFunc(func(*http.Request) (*http.Response, error) { return nil, boom })

	rt := Chain(base, AccessLogTransport(logger))
	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.com/x", nil))
	if !errors.Is(err, boom) {
		t.Fatalf("Expected %v, got %v", boom, err)
	}
	if !strings.Contains(buf.String(), "dial failed") {
		t.Errorf("Expected the error to be logged, got %s", buf.String())
	}
}
