package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/gst-invoices/internal/models"
	"github.com/diewo77/gst-invoices/internal/raster"
	"github.com/diewo77/gst-invoices/internal/render"
	"github.com/google/go-cmp/cmp"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var fixedNow = time.Date(2024, 3, 6, 3, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

// stubRaster records the caption seen on every call and fails on demand.
type stubRaster struct {
	captions []string
	failOn   int // 1-based call number; 0 never fails
	empty    bool
}

func (s *stubRaster) Rasterize(doc *render.Document) (image.Image, error) {
	s.captions = append(s.captions, doc.Caption)
	if s.failOn == len(s.captions) {
		return nil, errors.New("boom")
	}
	if s.empty {
		return image.NewRGBA(image.Rectangle{}), nil
	}
	img := image.NewRGBA(image.Rect(0, 0, 120, 170))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}

func testOptions() Options {
	return Options{MarginMM: 10, JPEGQuality: 85, Verify: true, Now: func() time.Time { return fixedNow }}
}

func newDoc() *render.Document {
	doc := &render.Document{Title: "TAX INVOICE"}
	doc.SetVariant(models.CopyOriginal)
	return doc
}

func TestExport_Both(t *testing.T) {
	r := &stubRaster{}
	sink := &MemorySink{}
	doc := newDoc()

	names, err := New(r, testOptions()).Export(context.Background(), doc, models.AllCopyVariants, "INV/001", sink)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := []string{"INV_001_Original_2024-03-05.pdf", "INV_001_Duplicate_2024-03-05.pdf"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ORIGINAL FOR RECIPIENT", "DUPLICATE FOR TRANSPORTER"}, r.captions); diff != "" {
		t.Errorf("captions mismatch (-want +got):\n%s", diff)
	}

	conf := model.NewDefaultConfiguration()
	for _, f := range sink.Files() {
		if !bytes.HasPrefix(f.Data, []byte("%PDF-")) {
			t.Errorf("%s is not a PDF", f.Name)
		}
		n, err := api.PageCount(bytes.NewReader(f.Data), conf)
		if err != nil {
			t.Fatalf("PageCount(%s): %v", f.Name, err)
		}
		if n != 1 {
			t.Errorf("%s has %d pages, want 1", f.Name, n)
		}
	}
}

func TestExport_DuplicateOnly(t *testing.T) {
	sink := &MemorySink{}
	names, err := New(&stubRaster{}, testOptions()).Export(context.Background(), newDoc(), []models.CopyVariant{models.CopyDuplicate}, "", sink)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || !strings.Contains(names[0], "_Duplicate_") {
		t.Fatalf("names = %v, want one duplicate file", names)
	}
	if names[0] != "invoice_Duplicate_2024-03-05.pdf" {
		t.Errorf("name = %q", names[0])
	}
}

func TestExport_RestoresCaption(t *testing.T) {
	doc := newDoc()
	doc.SetVariant(models.CopyDuplicate)
	_, err := New(&stubRaster{}, testOptions()).Export(context.Background(), doc, []models.CopyVariant{models.CopyOriginal}, "1", &MemorySink{})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Variant != models.CopyDuplicate || doc.Caption != "DUPLICATE FOR TRANSPORTER" {
		t.Errorf("caption not restored: %v %q", doc.Variant, doc.Caption)
	}
}

func TestExport_LaterFailureKeepsEarlierFile(t *testing.T) {
	sink := &MemorySink{}
	doc := newDoc()
	doc.SetVariant(models.CopyDuplicate)

	names, err := New(&stubRaster{failOn: 2}, testOptions()).Export(context.Background(), doc, models.AllCopyVariants, "A-1", sink)
	if err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff([]string{"A_1_Original_2024-03-05.pdf"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if len(sink.Files()) != 1 {
		t.Errorf("sink has %d files, want 1", len(sink.Files()))
	}
	if doc.Variant != models.CopyDuplicate {
		t.Errorf("caption not restored after failure: %v", doc.Variant)
	}
}

func TestExport_EmptySurface(t *testing.T) {
	sink := &MemorySink{}
	r := &stubRaster{empty: true}
	names, err := New(r, testOptions()).Export(context.Background(), newDoc(), models.AllCopyVariants, "1", sink)
	if !errors.Is(err, ErrEmptySurface) {
		t.Fatalf("err = %v, want ErrEmptySurface", err)
	}
	if len(names) != 0 || len(sink.Files()) != 0 {
		t.Errorf("nothing should be written, got %v", names)
	}
	if len(r.captions) != 1 {
		t.Errorf("rasterized %d times, want abort after first", len(r.captions))
	}
	if Hint(err) == "" {
		t.Error("missing hint")
	}
}

func TestExport_ZeroScaleRasterizer(t *testing.T) {
	_, err := New(raster.New(raster.Options{Scale: 0}), testOptions()).Export(context.Background(), newDoc(), models.AllCopyVariants, "1", &MemorySink{})
	if !errors.Is(err, ErrEmptySurface) {
		t.Fatalf("err = %v, want ErrEmptySurface", err)
	}
}

func TestExport_CancelledBeforeSettle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := testOptions()
	opts.SettleDelay = time.Second
	r := &stubRaster{}
	names, err := New(r, opts).Export(ctx, newDoc(), models.AllCopyVariants, "1", &MemorySink{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(names) != 0 || len(r.captions) != 0 {
		t.Errorf("nothing should run after cancel: names=%v calls=%d", names, len(r.captions))
	}
}

func TestExport_RealRasterizer(t *testing.T) {
	doc := render.Render(models.InvoiceFields{SellerName: "Acme", InvoiceNo: "7"}, nil, models.Totals{}, models.CopyOriginal)
	sink := &MemorySink{}
	names, err := New(raster.New(raster.Options{Scale: 1}), testOptions()).Export(context.Background(), doc, []models.CopyVariant{models.CopyOriginal}, "7", sink)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("names = %v", names)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		invoiceNo string
		variant   models.CopyVariant
		want      string
	}{
		{"INV-2024/001", models.CopyOriginal, "INV_2024_001_Original_2024-03-05.pdf"},
		{"", models.CopyDuplicate, "invoice_Duplicate_2024-03-05.pdf"},
		{"   ", models.CopyOriginal, "invoice_Original_2024-03-05.pdf"},
		{"№ 42", models.CopyOriginal, "__42_Original_2024-03-05.pdf"},
		{"abcXYZ09", models.CopyDuplicate, "abcXYZ09_Duplicate_2024-03-05.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.invoiceNo, tt.variant, fixedNow); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.invoiceNo, got, tt.want)
		}
	}
}

func TestFit(t *testing.T) {
	const pageW, pageH = 210.0, 297.0
	tests := []struct {
		name       string
		imgW, imgH float64
	}{
		{"tall", 1191, 1900},
		{"wide", 2000, 500},
		{"a4 shaped", 794, 1123},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Fit(tt.imgW, tt.imgH, pageW, pageH, 10)
			if p.W > 190+1e-9 || p.H > 277+1e-9 {
				t.Errorf("placement %+v exceeds margins", p)
			}
			if math.Abs(p.W/p.H-tt.imgW/tt.imgH) > 1e-9 {
				t.Errorf("aspect ratio changed: %+v", p)
			}
			if math.Abs(p.X-(pageW-p.W)/2) > 1e-9 || p.Y != 10 {
				t.Errorf("not centred/top-aligned: %+v", p)
			}
			if math.Abs(p.W-190) > 1e-9 && math.Abs(p.H-277) > 1e-9 {
				t.Errorf("neither dimension touches the margin: %+v", p)
			}
		})
	}
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := (DirSink{Dir: dir}).Write("a.pdf", []byte("x")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "a.pdf"))
	if err != nil || string(b) != "x" {
		t.Fatalf("read back %q, %v", b, err)
	}
}

func TestWriteZip(t *testing.T) {
	var buf bytes.Buffer
	files := []File{{"a.pdf", []byte("one")}, {"b.pdf", []byte("two")}}
	if err := WriteZip(&buf, files); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, f := range zr.File {
		got = append(got, f.Name)
	}
	if diff := cmp.Diff([]string{"a.pdf", "b.pdf"}, got); diff != "" {
		t.Errorf("zip entries (-want +got):\n%s", diff)
	}
}

func TestHint(t *testing.T) {
	if Hint(nil) != "" {
		t.Error("nil error must have no hint")
	}
	for _, err := range []error{ErrEmptySurface, ErrExportInProgress, context.Canceled, errors.New("disk full")} {
		if Hint(err) == "" {
			t.Errorf("no hint for %v", err)
		}
	}
}
