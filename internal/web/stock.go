package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/erazemk/oficina/internal/catalog"
	"github.com/erazemk/oficina/internal/imaging"
	"github.com/erazemk/oficina/internal/model"
	"github.com/erazemk/oficina/internal/spreadsheet"
	"github.com/erazemk/oficina/internal/store"
	"github.com/erazemk/oficina/internal/workflow"
)

// draftFields are the intake form inputs, in form order.
var draftFields = []string{"code", "description", "brand", "unit", "incoming_quantity", "unit_cost"}

// StockPageData is rendered by stock.html.
type StockPageData struct {
	PageData
	State     workflow.State
	Items     []model.StockItem
	Summary   catalog.Summary
	Query     string
	Threshold int64
	Photos    bool
}

// StockPage handles GET /stock.
func (s *Server) StockPage(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess.needsLoad() {
		// Failures land in State.Error.
		_ = sess.ctrl.Dispatch(r.Context(), workflow.Refresh{})
	}

	state := sess.ctrl.Snapshot()
	query := r.URL.Query().Get("q")
	data := StockPageData{
		PageData:  sess.takeFlash(),
		State:     state,
		Items:     catalog.Filter(state.Catalog, query),
		Summary:   catalog.Summarize(state.Catalog, s.LowStockThreshold),
		Query:     query,
		Threshold: s.LowStockThreshold,
		Photos:    s.DB != nil,
	}
	data.Title = "Estoque"
	s.Templates.Render(w, "stock.html", data)
}

// dispatch runs ev for the caller's session and redirects back to the stock
// page. Rejections the state does not display are flashed.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, ev workflow.Event, success string) {
	sess := getSession(r.Context())
	err := sess.ctrl.Dispatch(r.Context(), ev)
	switch {
	case err == nil:
		sess.setFlash("", success)
	case errors.Is(err, workflow.ErrInFlight), errors.Is(err, workflow.ErrInvalidTransition):
		sess.setFlash(workflow.UserMessage(err), "")
	}
	s.back(w, r)
}

func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	target := "/stock"
	if q := r.FormValue("q"); q != "" {
		target += "?q=" + url.QueryEscape(q)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Refresh handles POST /stock/refresh.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, workflow.Refresh{}, "")
}

// OpenIntake handles POST /stock/intake/open.
func (s *Server) OpenIntake(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, workflow.OpenIntake{}, "")
}

// CloseIntake handles POST /stock/intake/close.
func (s *Server) CloseIntake(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, workflow.CloseIntake{}, "")
}

// applyDraft copies the posted intake fields into the session draft and
// returns the first field that failed to parse.
func applyDraft(r *http.Request, ctrl *workflow.Controller) error {
	if err := r.ParseForm(); err != nil {
		return &model.ValidationError{Message: "Formulário inválido."}
	}
	var first error
	for _, field := range draftFields {
		if _, ok := r.PostForm[field]; !ok {
			continue
		}
		err := ctrl.Dispatch(r.Context(), workflow.SetDraftField{Field: field, Value: r.PostFormValue(field)})
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CodeBlur handles POST /stock/intake/blur, sent when the operator leaves the
// code field.
func (s *Server) CodeBlur(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if err := applyDraft(r, sess.ctrl); err != nil {
		sess.setFlash(workflow.UserMessage(err), "")
		s.back(w, r)
		return
	}
	s.dispatch(w, r, workflow.CodeBlur{Code: r.PostFormValue("code")}, "")
}

// SubmitIntake handles POST /stock/intake/submit.
func (s *Server) SubmitIntake(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if err := applyDraft(r, sess.ctrl); err != nil {
		sess.setFlash(workflow.UserMessage(err), "")
		s.back(w, r)
		return
	}

	err := sess.ctrl.Dispatch(r.Context(), workflow.SubmitIntake{})
	switch {
	case err == nil && sess.ctrl.Snapshot().Merge == nil:
		sess.setFlash("", "Item cadastrado.")
	case errors.Is(err, workflow.ErrInFlight), errors.Is(err, workflow.ErrInvalidTransition):
		sess.setFlash(workflow.UserMessage(err), "")
	}
	s.back(w, r)
}

// ConfirmMerge handles POST /stock/merge/confirm.
func (s *Server) ConfirmMerge(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, workflow.ConfirmMerge{}, "Estoque atualizado.")
}

// CancelMerge handles POST /stock/merge/cancel.
func (s *Server) CancelMerge(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, workflow.CancelMerge{}, "")
}

// OpenDelete handles POST /stock/delete/open.
func (s *Server) OpenDelete(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		sess.setFlash("Item inválido.", "")
		s.back(w, r)
		return
	}

	for _, item := range sess.ctrl.Snapshot().Catalog {
		if item.ID == id {
			s.dispatch(w, r, workflow.OpenDelete{Target: item}, "")
			return
		}
	}
	sess.setFlash(workflow.UserMessage(&model.NotFoundError{Resource: "stock item", ID: id}), "")
	s.back(w, r)
}

// ProceedDelete handles POST /stock/delete/proceed.
func (s *Server) ProceedDelete(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, workflow.ProceedDelete{}, "")
}

// ConfirmDelete handles POST /stock/delete/confirm. The posted typed_text
// replaces the text held by the guard before confirmation is checked.
func (s *Server) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if err := sess.ctrl.Dispatch(r.Context(), workflow.SetTypedText{Text: r.FormValue("typed_text")}); err != nil {
		sess.setFlash(workflow.UserMessage(err), "")
		s.back(w, r)
		return
	}

	err := sess.ctrl.Dispatch(r.Context(), workflow.ConfirmDelete{})
	var verr *model.ValidationError
	switch {
	case err == nil:
		sess.setFlash("", "Item excluído.")
	case errors.As(err, &verr), errors.Is(err, workflow.ErrInFlight), errors.Is(err, workflow.ErrInvalidTransition):
		sess.setFlash(workflow.UserMessage(err), "")
	}
	s.back(w, r)
}

// CancelDelete handles POST /stock/delete/cancel.
func (s *Server) CancelDelete(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, workflow.CancelDelete{}, "")
}

// Export handles GET /stock/export, writing the session's catalog as a
// spreadsheet.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	items := getSession(r.Context()).ctrl.Snapshot().Catalog

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="estoque-%s.xlsx"`, time.Now().Format("2006-01-02")))
	if err := spreadsheet.WriteCatalog(w, items, catalog.Summarize(items, s.LowStockThreshold)); err != nil {
		slog.Error("failed to export stock", "error", err)
	}
}

// ItemImage handles GET /stock/{id}/image.
func (s *Server) ItemImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetStockItemImage(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get stock item image", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}

// UploadImage handles POST /stock/{id}/image.
func (s *Server) UploadImage(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUpload)
	file, _, err := r.FormFile("image")
	if err != nil {
		sess.setFlash("Selecione uma foto.", "")
		s.back(w, r)
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		sess.setFlash("Formato de imagem não suportado.", "")
		s.back(w, r)
		return
	}
	if err := store.SetStockItemImage(r.Context(), s.DB, id, photo.Data, photo.MIME); err != nil {
		sess.setFlash(workflow.UserMessage(err), "")
		s.back(w, r)
		return
	}
	sess.setFlash("", "Foto atualizada.")
	s.back(w, r)
}
