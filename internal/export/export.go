// Package export turns rendered invoices into single-page A4 PDF files, one
// per copy variant.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/diewo77/gst-invoices/internal/models"
	"github.com/diewo77/gst-invoices/internal/render"
	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrEmptySurface means the rasterizer produced a zero-sized image.
	ErrEmptySurface = errors.New("failed to capture invoice preview")
	// ErrExportInProgress is returned when an export is already running for
	// the same workspace.
	ErrExportInProgress = errors.New("an export is already in progress")
)

// Rasterizer draws a document onto an image.
type Rasterizer interface {
	Rasterize(doc *render.Document) (image.Image, error)
}

// Options tunes page layout and pacing.
type Options struct {
	MarginMM     float64
	JPEGQuality  int
	SettleDelay  time.Duration
	VariantPause time.Duration
	// Verify re-reads every produced file and checks it has exactly one page.
	Verify bool
	// Now stamps file names; defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions mirrors the print settings used for the downloadable copies.
func DefaultOptions() Options {
	return Options{
		MarginMM:     10,
		JPEGQuality:  85,
		SettleDelay:  100 * time.Millisecond,
		VariantPause: 500 * time.Millisecond,
		Verify:       true,
		Now:          time.Now,
	}
}

// Exporter writes PDF copies of a document.
type Exporter struct {
	raster Rasterizer
	opts   Options
	conf   *model.Configuration
}

// New returns an Exporter drawing pages with r.
func New(r Rasterizer, opts Options) *Exporter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = jpeg.DefaultQuality
	}
	return &Exporter{raster: r, opts: opts, conf: model.NewDefaultConfiguration()}
}

// Export writes one PDF per variant, in order, to sink and returns the file
// names written. On failure the remaining variants are skipped; files already
// written stay in the sink and their names are returned with the error. The
// document caption is restored to its starting variant before returning.
func (e *Exporter) Export(ctx context.Context, doc *render.Document, variants []models.CopyVariant, invoiceNo string, sink Sink) ([]string, error) {
	start := doc.Variant
	defer doc.SetVariant(start)

	written := make([]string, 0, len(variants))
	for i, v := range variants {
		if i > 0 {
			if err := wait(ctx, e.opts.VariantPause); err != nil {
				return written, err
			}
		}
		doc.SetVariant(v)
		if err := wait(ctx, e.opts.SettleDelay); err != nil {
			return written, err
		}

		data, err := e.Page(doc)
		if err != nil {
			return written, fmt.Errorf("export %s copy: %w", v, err)
		}
		name := FileName(invoiceNo, v, e.opts.Now())
		if err := sink.Write(name, data); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		log.Printf("export: wrote %s (%d bytes)", name, len(data))
		written = append(written, name)
	}
	return written, nil
}

// Page rasterizes doc as it stands and returns a one-page PDF.
func (e *Exporter) Page(doc *render.Document) ([]byte, error) {
	img, err := e.raster.Rasterize(doc)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptySurface
	}

	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, &jpeg.Options{Quality: e.opts.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("gst-invoices", true)
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	b := img.Bounds()
	box := Fit(float64(b.Dx()), float64(b.Dy()), pageW, pageH, e.opts.MarginMM)

	opt := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("invoice", opt, &jpg)
	pdf.ImageOptions("invoice", box.X, box.Y, box.W, box.H, false, opt, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	if e.opts.Verify {
		n, err := api.PageCount(bytes.NewReader(out.Bytes()), e.conf)
		if err != nil {
			return nil, fmt.Errorf("verify pdf: %w", err)
		}
		if n != 1 {
			return nil, fmt.Errorf("verify pdf: got %d pages, want 1", n)
		}
	}
	return out.Bytes(), nil
}

// Placement is an image position on the page, in page units.
type Placement struct {
	X, Y, W, H float64
}

// Fit scales an image into the page minus margins, keeping its aspect ratio.
// The result is centred horizontally and top-aligned at the margin.
func Fit(imgW, imgH, pageW, pageH, margin float64) Placement {
	maxW := pageW - 2*margin
	maxH := pageH - 2*margin
	ratio := min(maxW/imgW, maxH/imgH)
	w, h := imgW*ratio, imgH*ratio
	return Placement{X: (pageW - w) / 2, Y: margin, W: w, H: h}
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName builds <invoice>_<Suffix>_<YYYY-MM-DD>.pdf. The invoice number
// has every character outside [A-Za-z0-9] replaced by an underscore; a blank
// number becomes "invoice". The date is taken in UTC.
func FileName(invoiceNo string, v models.CopyVariant, now time.Time) string {
	base := strings.TrimSpace(invoiceNo)
	if base == "" {
		base = "invoice"
	}
	base = unsafeName.ReplaceAllString(base, "_")
	return base + "_" + v.Suffix() + "_" + now.UTC().Format("2006-01-02") + ".pdf"
}

// Hint returns a short remediation text for an export error.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptySurface):
		return "The preview could not be drawn. Check the raster scale setting and try again."
	case errors.Is(err, ErrExportInProgress):
		return "Wait for the running export to finish, then try again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The export was cancelled before all copies were written."
	default:
		return "Try again. If the problem persists, check that the output location is writable."
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
