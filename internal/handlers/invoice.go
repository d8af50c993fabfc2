package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/gst-invoices/httpx"
	"github.com/diewo77/gst-invoices/internal/export"
	"github.com/diewo77/gst-invoices/internal/models"
	"github.com/diewo77/gst-invoices/internal/money"
	"github.com/diewo77/gst-invoices/internal/services"
	"github.com/diewo77/gst-invoices/session"
	"github.com/diewo77/gst-invoices/view"
)

// InvoiceHandler binds the invoice form to the caller's workspace.
type InvoiceHandler struct {
	exporter services.Exporter
}

func NewInvoiceHandler(ex services.Exporter) *InvoiceHandler {
	return &InvoiceHandler{exporter: ex}
}

// Register mounts the invoice routes on mux.
func (h *InvoiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Form)
	mux.HandleFunc("POST /fields", h.UpdateFields)
	mux.HandleFunc("POST /items", h.AddItem)
	mux.HandleFunc("POST /items/{id}", h.UpdateItem)
	mux.HandleFunc("POST /items/{id}/delete", h.DeleteItem)
	mux.HandleFunc("GET /preview", h.Preview)
	mux.HandleFunc("POST /export", h.Export)
}

func workspace(w http.ResponseWriter, r *http.Request) (*services.Workspace, bool) {
	ws, ok := session.FromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusInternalServerError, "no_session", nil)
		return nil, false
	}
	return ws, true
}

// totalsView is the JSON shape of live totals.
type totalsView struct {
	Subtotal      string `json:"subtotal"`
	CGST          string `json:"cgst"`
	SGST          string `json:"sgst"`
	IGST          string `json:"igst"`
	RoundOff      string `json:"roundOff,omitempty"`
	Total         string `json:"total"`
	TotalQuantity string `json:"totalQuantity"`
}

func newTotalsView(t models.Totals) totalsView {
	v := totalsView{
		Subtotal:      money.Format(t.Subtotal),
		CGST:          money.Format(t.CGST),
		SGST:          money.Format(t.SGST),
		IGST:          money.Format(t.IGST),
		Total:         money.Format(t.Total),
		TotalQuantity: money.FormatNumber(t.TotalQuantity),
	}
	if t.ShowRoundOff() {
		v.RoundOff = t.RoundOff.StringFixed(2)
	}
	return v
}

func (h *InvoiceHandler) renderForm(w http.ResponseWriter, r *http.Request, ws *services.Workspace, status int, errMsg, hint string) {
	data := map[string]any{
		"Fields":          ws.Fields(),
		"SameAsConsignee": ws.SameAsConsignee(),
		"Items":           ws.Items().Snapshot(),
		"Totals":          ws.Totals(),
		"Variant":         ws.PreviewVariant(),
		"Error":           errMsg,
		"Hint":            hint,
	}
	if status != http.StatusOK {
		// Render buffers, so the status can only be sent by wrapping the writer.
		w = &statusWriter{ResponseWriter: w, status: status}
	}
	if err := view.Render(w, r, "form.html", data); err != nil {
		log.Printf("render form: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Form shows the editable invoice.
func (h *InvoiceHandler) Form(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"fields":          ws.Fields(),
			"sameAsConsignee": ws.SameAsConsignee(),
			"items":           ws.Items().Snapshot(),
			"totals":          newTotalsView(ws.Totals()),
		})
		return
	}
	h.renderForm(w, r, ws, http.StatusOK, "", "")
}

type fieldsPayload struct {
	Fields          map[string]string `json:"fields"`
	RoundOff        *bool             `json:"roundOff"`
	SameAsConsignee *bool             `json:"sameAsConsignee"`
}

// UpdateFields binds posted invoice fields. A form post carries every
// field, so absent checkboxes mean "off"; a JSON post only touches what it
// names.
func (h *InvoiceHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}

	var p fieldsPayload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		p.Fields = map[string]string{}
		for name := range r.PostForm {
			if models.IsTextField(name) {
				p.Fields[name] = r.PostForm.Get(name)
			}
		}
		roundOff := r.PostForm.Has("roundOff")
		same := r.PostForm.Has("sameAsConsignee")
		p.RoundOff, p.SameAsConsignee = &roundOff, &same
	}

	// Consignee edits land before the copy; buyer edits after the lock
	// state is known, so a locked buyer ignores them.
	unknown := []string{}
	for name, value := range p.Fields {
		if models.IsBuyerField(name) {
			continue
		}
		if !ws.UpdateField(name, value) {
			unknown = append(unknown, name)
		}
	}
	if p.SameAsConsignee != nil {
		ws.SetSameAsConsignee(*p.SameAsConsignee)
	}
	for name, value := range p.Fields {
		if models.IsBuyerField(name) {
			ws.UpdateField(name, value)
		}
	}
	if p.RoundOff != nil {
		ws.SetRoundOff(*p.RoundOff)
	}

	if httpx.WantsJSON(r) {
		resp := map[string]any{
			"fields":          ws.Fields(),
			"sameAsConsignee": ws.SameAsConsignee(),
			"totals":          newTotalsView(ws.Totals()),
		}
		if len(unknown) > 0 {
			resp["ignored"] = unknown
		}
		httpx.JSON(w, http.StatusOK, resp)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AddItem appends a blank row.
func (h *InvoiceHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	item := ws.Items().AddBlank()
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, item)
		return
	}
	http.Redirect(w, r, "/#item-"+strconv.FormatUint(item.ID, 10), http.StatusSeeOther)
}

func itemID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// UpdateItem edits a row. It accepts either a single field/value pair or
// any of the column names directly.
func (h *InvoiceHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	id, ok := itemID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if _, exists := ws.Items().Get(id); !exists {
		httpx.JSONError(w, http.StatusNotFound, "item_not_found", nil)
		return
	}

	updates := map[services.ItemField]string{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Field string `json:"field"`
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		f, err := services.ParseItemField(body.Field)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_field", map[string]string{"field": body.Field})
			return
		}
		updates[f] = body.Value
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		if name := r.PostForm.Get("field"); name != "" {
			f, err := services.ParseItemField(name)
			if err != nil {
				httpx.JSONError(w, http.StatusBadRequest, "invalid_field", map[string]string{"field": name})
				return
			}
			updates[f] = r.PostForm.Get("value")
		} else {
			for name := range r.PostForm {
				if f, err := services.ParseItemField(name); err == nil {
					updates[f] = r.PostForm.Get(name)
				}
			}
		}
	}

	var item models.LineItem
	for f, v := range updates {
		item, _ = ws.Items().Update(id, f, v)
	}
	if len(updates) == 0 {
		item, _ = ws.Items().Get(id)
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"item":   item,
			"amount": money.Format(item.Amount),
			"totals": newTotalsView(ws.Totals()),
		})
		return
	}
	http.Redirect(w, r, "/#item-"+strconv.FormatUint(id, 10), http.StatusSeeOther)
}

// DeleteItem removes a row. The store never ends up empty.
func (h *InvoiceHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	id, ok := itemID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if !ws.Items().Remove(id) {
		httpx.JSONError(w, http.StatusNotFound, "item_not_found", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"items":  ws.Items().Snapshot(),
			"totals": newTotalsView(ws.Totals()),
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Preview renders the document for the requested copy and remembers it as
// the previewed one.
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	if raw := r.URL.Query().Get("copy"); raw != "" {
		v, valid := models.ParseCopyVariant(raw)
		if !valid {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_copy", map[string]string{"copy": raw})
			return
		}
		ws.SetPreviewVariant(v)
	}
	variant := ws.PreviewVariant()
	doc := ws.Render(variant)

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, doc)
		return
	}
	if err := view.Render(w, r, "preview.html", map[string]any{
		"Document": doc,
		"Variant":  variant,
	}); err != nil {
		log.Printf("render preview: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Export downloads the selected copies: a PDF for one copy, a zip for both.
func (h *InvoiceHandler) Export(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	variants, err := models.ParseCopySelection(r.FormValue("copy"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_copy", map[string]string{"copy": r.FormValue("copy")})
		return
	}

	sink := &export.MemorySink{}
	if _, err := ws.Export(r.Context(), h.exporter, variants, sink); err != nil {
		h.exportFailed(w, r, ws, sink.Files(), err)
		return
	}

	files := sink.Files()
	if len(files) == 1 {
		httpx.Attachment(w, "application/pdf", files[0].Name, files[0].Data)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteZip(&buf, files); err != nil {
		h.exportFailed(w, r, ws, files, err)
		return
	}
	httpx.Attachment(w, "application/zip", zipName(files), buf.Bytes())
}

// exportFailed reports err. Copies produced before the failure are kept: JSON
// clients receive them under details.files, HTML clients see their names.
func (h *InvoiceHandler) exportFailed(w http.ResponseWriter, r *http.Request, ws *services.Workspace, kept []export.File, err error) {
	written := make([]string, 0, len(kept))
	for _, f := range kept {
		written = append(written, f.Name)
	}
	status, code := http.StatusInternalServerError, "export_failed"
	if errors.Is(err, export.ErrExportInProgress) {
		status, code = http.StatusConflict, "export_in_progress"
	}
	log.Printf("export: %v (written: %v)", err, written)
	hint := export.Hint(err)
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, status, code, map[string]any{
			"message": err.Error(),
			"hint":    hint,
			"written": written,
			"files":   kept,
		})
		return
	}
	msg := "Error generating PDF: " + err.Error()
	if len(written) > 0 {
		msg += " (already generated: " + strings.Join(written, ", ") + ")"
	}
	h.renderForm(w, r, ws, status, msg, hint)
}

// zipName derives the archive name from the first file, swapping the copy
// suffix for "Copies".
func zipName(files []export.File) string {
	if len(files) == 0 {
		return "invoice_Copies.zip"
	}
	name := strings.TrimSuffix(files[0].Name, ".pdf")
	for _, v := range models.AllCopyVariants {
		name = strings.Replace(name, "_"+v.Suffix()+"_", "_Copies_", 1)
	}
	return name + ".zip"
}

type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (s *statusWriter) WriteHeader(code int) {
	if !s.wrote {
		s.wrote = true
		s.ResponseWriter.WriteHeader(code)
	}
}

func (s *statusWriter) Write(b []byte) (int, error) {
	if !s.wrote {
		s.WriteHeader(s.status)
	}
	return s.ResponseWriter.Write(b)
}
