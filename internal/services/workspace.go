package services

import (
	"context"
	"sync"

	"github.com/diewo77/gst-invoices/internal/export"
	"github.com/diewo77/gst-invoices/internal/models"
	"github.com/diewo77/gst-invoices/internal/render"
	"golang.org/x/sync/semaphore"
)

// Exporter writes copies of a rendered document to a sink.
type Exporter interface {
	Export(ctx context.Context, doc *render.Document, variants []models.CopyVariant, invoiceNo string, sink export.Sink) ([]string, error)
}

// Workspace holds the editable state of one invoice: its fields, its items,
// the copy shown in the preview and the "buyer same as consignee" lock.
type Workspace struct {
	mu          sync.Mutex
	fields      models.InvoiceFields
	items       *ItemStore
	preview     models.CopyVariant
	buyerLinked bool

	exporting *semaphore.Weighted
}

// NewWorkspace returns an empty invoice with one blank item.
func NewWorkspace(opts ...StoreOption) *Workspace {
	return &Workspace{
		items:     NewItemStore(opts...),
		preview:   models.CopyOriginal,
		exporting: semaphore.NewWeighted(1),
	}
}

// Items returns the line item store.
func (w *Workspace) Items() *ItemStore { return w.items }

// Fields returns a copy of the invoice fields.
func (w *Workspace) Fields() models.InvoiceFields {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields
}

// SetFields replaces every field at once.
func (w *Workspace) SetFields(f models.InvoiceFields) {
	w.mu.Lock()
	w.fields = f
	w.mu.Unlock()
}

// UpdateField sets one text field by its form name. It reports false for
// unknown names and for buyer fields while they are linked to the consignee.
func (w *Workspace) UpdateField(name, value string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buyerLinked && models.IsBuyerField(name) {
		return false
	}
	return w.fields.Set(name, value)
}

// SetSameAsConsignee copies the consignee into the buyer and locks the buyer
// fields when on is true. The copy happens once; later consignee edits do
// not reach the buyer. Turning it off only unlocks.
func (w *Workspace) SetSameAsConsignee(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if on && !w.buyerLinked {
		w.fields.CopyConsigneeToBuyer()
	}
	w.buyerLinked = on
}

// SameAsConsignee reports whether the buyer fields are locked.
func (w *Workspace) SameAsConsignee() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buyerLinked
}

// SetRoundOff toggles rounding of the grand total.
func (w *Workspace) SetRoundOff(on bool) {
	w.mu.Lock()
	w.fields.RoundOff = on
	w.mu.Unlock()
}

// PreviewVariant returns the copy shown in the preview.
func (w *Workspace) PreviewVariant() models.CopyVariant {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.preview
}

// SetPreviewVariant switches the previewed copy.
func (w *Workspace) SetPreviewVariant(v models.CopyVariant) {
	w.mu.Lock()
	w.preview = v
	w.mu.Unlock()
}

// Totals computes totals over every stored item.
func (w *Workspace) Totals() models.Totals {
	f := w.Fields()
	return ComputeTotals(w.items.Snapshot(), f.TaxRates(), f.RoundOff)
}

// Render builds the document for the given copy.
func (w *Workspace) Render(v models.CopyVariant) *render.Document {
	f := w.Fields()
	items := w.items.Snapshot()
	totals := ComputeTotals(items, f.TaxRates(), f.RoundOff)
	return render.Render(f, items, totals, v)
}

// Export renders the previewed document and hands it to ex. Only one export
// per workspace runs at a time; a concurrent call fails with
// export.ErrExportInProgress.
func (w *Workspace) Export(ctx context.Context, ex Exporter, variants []models.CopyVariant, sink export.Sink) ([]string, error) {
	if !w.exporting.TryAcquire(1) {
		return nil, export.ErrExportInProgress
	}
	defer w.exporting.Release(1)

	doc := w.Render(w.PreviewVariant())
	return ex.Export(ctx, doc, variants, w.Fields().InvoiceNo, sink)
}
