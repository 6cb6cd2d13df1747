package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/erazemk/oficina/internal/catalog"
	"github.com/erazemk/oficina/internal/model"
	"github.com/erazemk/oficina/internal/workflow"
	webembed "github.com/erazemk/oficina/web"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FormatMoney renders an amount as Brazilian reais, e.g. "R$ 1.234,50".
func FormatMoney(d decimal.Decimal) string {
	return "R$ " + printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":  FormatMoney,
		"number": func(n int) string { return printer.Sprintf("%d", n) },
		"total":  func(item model.StockItem) string { return FormatMoney(item.TotalValue()) },
		"lowStock": func(item model.StockItem, threshold int64) bool {
			return catalog.IsLowStock(item, threshold)
		},
		"costInput": func(d decimal.Decimal) string {
			if d.IsZero() {
				return ""
			}
			return d.StringFixed(2)
		},
		"qtyInput": func(n int64) string {
			if n == 0 {
				return ""
			}
			return fmt.Sprint(n)
		},
		"awaitingInitial": func(g workflow.DeletionGuard) bool { return g.Stage == workflow.AwaitingInitialConfirm },
		"awaitingTyped":   func(g workflow.DeletionGuard) bool { return g.Stage == workflow.AwaitingTypedConfirm },
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}
	for _, page := range []string{"stock.html"} {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl, err := template.New(page).Funcs(FuncMap()).Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		if _, err := tmpl.Parse(string(pageBytes)); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Error   string
	Success string
}
