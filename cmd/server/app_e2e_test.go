package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/gst-invoices/internal/config"
	"github.com/diewo77/gst-invoices/session"
)

func TestInvoiceFlowE2E(t *testing.T) {
	t.Setenv("EXPORT_SETTLE_MS", "0")
	t.Setenv("EXPORT_VARIANT_PAUSE_MS", "0")
	t.Setenv("EXPORT_RASTER_SCALE", "1")
	cfg := config.Load()
	app := NewApp(session.NewManager("e2e", time.Hour), cfg.Export.NewExporter())

	var sess *http.Cookie
	send := func(method, target string, form url.Values) *httptest.ResponseRecorder {
		t.Helper()
		var req *http.Request
		if form != nil {
			req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		} else {
			req = httptest.NewRequest(method, target, nil)
		}
		if sess != nil {
			req.AddCookie(sess)
		}
		rr := httptest.NewRecorder()
		app.ServeHTTP(rr, req)
		for _, c := range rr.Result().Cookies() {
			sess = c
		}
		return rr
	}

	if rr := send(http.MethodGet, "/", nil); rr.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rr.Code)
	}
	if sess == nil {
		t.Fatal("no session cookie")
	}

	send(http.MethodPost, "/fields", url.Values{
		"sellerName": {"Acme Traders"},
		"invoiceNo":  {"GST/24/001"},
		"cgstRate":   {"9"},
		"sgstRate":   {"9"},
	})
	send(http.MethodPost, "/items/1", url.Values{
		"description": {"Widget"},
		"hsn":         {"8471"},
		"quantity":    {"2"},
		"rate":        {"50"},
	})

	rr := send(http.MethodGet, "/preview?copy=original", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("preview = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Acme Traders",
		"Widget",
		"CGST @ 9%",
		"Total (2 items)",
		"Indian Rupees One Hundred Eighteen Only",
		"Indian Rupees Eighteen Only",
		"(ORIGINAL FOR RECIPIENT)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("preview missing %q", want)
		}
	}

	rr = send(http.MethodPost, "/export?copy=original", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("export = %d body=%s", rr.Code, rr.Body.String())
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "GST_24_001_Original_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	if rr := send(http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK {
		t.Errorf("healthz = %d", rr.Code)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	app := NewApp(session.NewManager("e2e", time.Hour), config.Load().Export.NewExporter())

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/fields", strings.NewReader("sellerName=Alpha"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	app.ServeHTTP(first, req)

	other := httptest.NewRecorder()
	app.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/preview", nil))
	if strings.Contains(other.Body.String(), "Alpha") {
		t.Error("a new session saw another session's data")
	}
}

func TestHealthzSkipsSession(t *testing.T) {
	sessions := session.NewManager("e2e", time.Hour)
	app := NewApp(sessions, config.Load().Export.NewExporter())

	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rr.Code, rr.Body.String())
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("healthz issued a session cookie")
	}
	if n := sessions.Len(); n != 0 {
		t.Errorf("healthz allocated %d workspace(s)", n)
	}

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if n := sessions.Len(); n != 1 {
		t.Errorf("form page allocated %d workspace(s), want 1", n)
	}
}
