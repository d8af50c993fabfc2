package main

import (
	"net/http"

	"github.com/diewo77/gst-invoices/internal/handlers"
	"github.com/diewo77/gst-invoices/internal/services"
	"github.com/diewo77/gst-invoices/session"
)

// App is the main application handler that sets up all routes.
type App struct {
	root     *http.ServeMux
	mux      *http.ServeMux
	sessions *session.Manager
	invoice  *handlers.InvoiceHandler
}

// NewApp creates a new application with all routes configured.
func NewApp(sessions *session.Manager, exporter services.Exporter) *App {
	app := &App{
		root:     http.NewServeMux(),
		mux:      http.NewServeMux(),
		sessions: sessions,
		invoice:  handlers.NewInvoiceHandler(exporter),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.root.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Invoice editing, preview and export
	a.invoice.Register(a.mux)
	// Everything but the health check works on the workspace bound to the
	// session cookie.
	a.root.Handle("/", a.sessions.Middleware(a.mux))

	// Probes carry no cookie and must not allocate a workspace.
	a.root.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
