package web

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/erazemk/oficina/internal/workflow"
	webembed "github.com/erazemk/oficina/web"
)

// Server is the stock console.
type Server struct {
	Templates         *Templates
	Sessions          *Sessions
	LowStockThreshold int64
	// DB enables item photos; nil when the catalog lives on a remote
	// backend.
	DB *sql.DB
}

// Options configures the stock console.
type Options struct {
	Workflow          workflow.Options
	LowStockThreshold int64
	DB                *sql.DB
}

// NewRouter creates the HTTP handler for the stock console. Every session
// gets its own workflow driven against collab.
func NewRouter(collab workflow.Collaborator, opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	s := &Server{
		Templates: templates,
		Sessions: NewSessions(func() *workflow.Controller {
			return workflow.New(collab, opts.Workflow)
		}, SessionTTL),
		LowStockThreshold: opts.LowStockThreshold,
		DB:                opts.DB,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/stock", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /stock", s.StockPage)
	mux.HandleFunc("GET /stock/export", s.Export)
	mux.HandleFunc("POST /stock/refresh", s.Refresh)
	mux.HandleFunc("POST /stock/intake/open", s.OpenIntake)
	mux.HandleFunc("POST /stock/intake/close", s.CloseIntake)
	mux.HandleFunc("POST /stock/intake/blur", s.CodeBlur)
	mux.HandleFunc("POST /stock/intake/submit", s.SubmitIntake)
	mux.HandleFunc("POST /stock/merge/confirm", s.ConfirmMerge)
	mux.HandleFunc("POST /stock/merge/cancel", s.CancelMerge)
	mux.HandleFunc("POST /stock/delete/open", s.OpenDelete)
	mux.HandleFunc("POST /stock/delete/proceed", s.ProceedDelete)
	mux.HandleFunc("POST /stock/delete/confirm", s.ConfirmDelete)
	mux.HandleFunc("POST /stock/delete/cancel", s.CancelDelete)

	if s.DB != nil {
		mux.HandleFunc("GET /stock/{id}/image", s.ItemImage)
		mux.HandleFunc("POST /stock/{id}/image", s.UploadImage)
	}

	return SessionMiddleware(s.Sessions)(mux), nil
}
