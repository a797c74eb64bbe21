package scraper

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"placement-watch/internal/config"
)

// fakePortal simulates the portal: a login form, a cookie-gated listing
// page and a logout endpoint. It records the request order.
type fakePortal struct {
	mu       sync.Mutex
	requests []string
	listing  string
	failList bool
}

func (p *fakePortal) record(path string) {
	p.mu.Lock()
	p.requests = append(p.requests, path)
	p.mu.Unlock()
}

func (p *fakePortal) paths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.requests...)
}

func (p *fakePortal) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login.html", func(w http.ResponseWriter, r *http.Request) {
		p.record("/login.html")
		io.WriteString(w, `<html><form action="/auth/login.html" method="post"></form></html>`)
	})
	mux.HandleFunc("/auth/login.html", func(w http.ResponseWriter, r *http.Request) {
		p.record("/auth/login.html")
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "form", http.StatusBadRequest)
			return
		}
		if r.PostFormValue("identity") != "tp-user" || r.PostFormValue("password") != "tp-pass" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		if r.PostFormValue("submit") != "Login" {
			http.Error(w, "missing submit", http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "portal_session", Value: "ok", Path: "/"})
		io.WriteString(w, "<html>welcome</html>")
	})
	mux.HandleFunc("/applyjobs.html", func(w http.ResponseWriter, r *http.Request) {
		p.record("/applyjobs.html")
		if c, err := r.Cookie("portal_session"); err != nil || c.Value != "ok" {
			http.Error(w, "not logged in", http.StatusForbidden)
			return
		}
		if p.failList {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, p.listing)
	})
	mux.HandleFunc("/logout.html", func(w http.ResponseWriter, r *http.Request) {
		p.record("/logout.html")
		io.WriteString(w, "<html>bye</html>")
	})
	return mux
}

func newSessionClient(t *testing.T, portal *fakePortal) (*SessionClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(portal.handler())
	t.Cleanup(srv.Close)
	client := NewSessionClient(config.PortalConfig{
		BaseURL:  srv.URL,
		Username: "tp-user",
		Password: "tp-pass",
	}, log.New(io.Discard, "", 0))
	return client, srv
}

func TestFetchPostingsPage(t *testing.T) {
	portal := &fakePortal{listing: `<table id="job-listings"><tbody></tbody></table>`}
	client, _ := newSessionClient(t, portal)

	page, err := client.FetchPostingsPage(context.Background())
	if err != nil {
		t.Fatalf("FetchPostingsPage: %v", err)
	}
	if !strings.Contains(string(page), "job-listings") {
		t.Fatalf("listing markup not captured: %q", page)
	}

	want := []string{"/login.html", "/auth/login.html", "/applyjobs.html", "/logout.html"}
	got := portal.paths()
	if len(got) != len(want) {
		t.Fatalf("request order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("request order = %v, want %v", got, want)
		}
	}
}

func TestFetchPostingsPageLogoutAfterFailure(t *testing.T) {
	portal := &fakePortal{failList: true}
	client, _ := newSessionClient(t, portal)

	_, err := client.FetchPostingsPage(context.Background())
	if !errors.Is(err, ErrScrapeFailed) {
		t.Fatalf("err = %v, want ErrScrapeFailed", err)
	}

	got := portal.paths()
	if len(got) == 0 || got[len(got)-1] != "/logout.html" {
		t.Fatalf("logout not attempted after failure, requests = %v", got)
	}
}

func TestFetchPostingsPageBadCredentials(t *testing.T) {
	portal := &fakePortal{listing: `<table id="job-listings"><tbody></tbody></table>`}
	srv := httptest.NewServer(portal.handler())
	t.Cleanup(srv.Close)

	client := NewSessionClient(config.PortalConfig{
		BaseURL:  srv.URL,
		Username: "tp-user",
		Password: "wrong",
	}, log.New(io.Discard, "", 0))

	_, err := client.FetchPostingsPage(context.Background())
	if !errors.Is(err, ErrScrapeFailed) {
		t.Fatalf("err = %v, want ErrScrapeFailed", err)
	}
}

func TestFetchPostingsPageNoBaseURL(t *testing.T) {
	client := NewSessionClient(config.PortalConfig{}, log.New(io.Discard, "", 0))
	_, err := client.FetchPostingsPage(context.Background())
	if !errors.Is(err, ErrScrapeFailed) {
		t.Fatalf("err = %v, want ErrScrapeFailed", err)
	}
}
