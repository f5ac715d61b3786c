package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Doist/embdr"
)

func newTestClient(t *testing.T) *embdr.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/resources/42/embed":
			w.Write([]byte(`{"id": "42", "embedKey": "k", "mimeType": "image/png", "status": "done",
				"metadata": {"title": "Sunset"}}`))
		default:
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("forbidden"))
		}
	}))
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return embdr.New(embdr.WithScheme("http"), embdr.WithServiceHost(u.Host))
}

func TestEmbedOnce(t *testing.T) {
	client := newTestClient(t)
	var out bytes.Buffer
	if err := embedOnce(client, "42", "k", "", "", time.Second, &out); err != nil {
		t.Fatal(err)
	}
	if want := "/embed/42/image?embedKey=k"; !strings.Contains(out.String(), want) {
		t.Fatalf("output %q does not contain %q", out.String(), want)
	}

	err := embedOnce(client, "13", "k", "", "", time.Second, &out)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEmbedOnce_page(t *testing.T) {
	client := newTestClient(t)
	name := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(name, []byte(`<html><body><div id="embdr"></div></body></html>`), 0644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := embedOnce(client, "42", "k", name, "embdr", time.Second, &out); err != nil {
		t.Fatal(err)
	}
	if want := `<div id="embdr"><img class="embdr-image" alt="Sunset"`; !strings.Contains(out.String(), want) {
		t.Fatalf("output %q does not contain %q", out.String(), want)
	}
	if err := embedOnce(client, "42", "k", name, "nope", time.Second, &out); err == nil {
		t.Fatal("missing element should be reported")
	}
}

func TestReadBlocklist(t *testing.T) {
	name := filepath.Join(t.TempDir(), "blocklist")
	data := "https://mail.google.com/\n# comment\n\nhttp://intranet/\nftp://x/\n"
	if err := os.WriteFile(name, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := readBlocklist(name)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"https://mail.google.com/", "http://intranet/"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}
