package raster

import (
	"image/color"
	"testing"

	"github.com/diewo77/gst-invoices/internal/models"
	"github.com/diewo77/gst-invoices/internal/render"
	"github.com/shopspring/decimal"
)

func sampleDocument(items int) *render.Document {
	f := models.InvoiceFields{
		SellerName:    "Acme Traders",
		SellerAddress: "12 Market Road\nPune",
		InvoiceNo:     "INV/001",
		InvoiceDate:   "2024-03-05",
		BankName:      "State Bank",
	}
	var list []models.LineItem
	for i := 0; i < items; i++ {
		it := models.LineItem{ID: uint64(i + 1), Description: "Widget", HSN: "8471", Quantity: "2", Unit: models.DefaultUnit, Rate: "50"}
		it.Recompute()
		list = append(list, it)
	}
	totals := models.Totals{
		Subtotal:      decimal.NewFromInt(int64(100 * items)),
		Total:         decimal.NewFromInt(int64(100 * items)),
		TotalQuantity: decimal.NewFromInt(int64(2 * items)),
	}
	return render.Render(f, list, totals, models.CopyOriginal)
}

func TestRasterize_SurfaceSize(t *testing.T) {
	r := New(Options{Scale: 1.5})
	img, err := r.Rasterize(sampleDocument(3))
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 1191 {
		t.Errorf("width = %d, want 1191", b.Dx())
	}
	if b.Dy() <= b.Dx()/2 {
		t.Errorf("height = %d looks too small for a full invoice", b.Dy())
	}
}

func TestRasterize_HeightIndependentOfItemCount(t *testing.T) {
	r := New(Options{Scale: 1})
	a, err := r.Rasterize(sampleDocument(1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Rasterize(sampleDocument(8))
	if err != nil {
		t.Fatal(err)
	}
	if a.Bounds().Dy() != b.Bounds().Dy() {
		t.Errorf("heights differ: %d vs %d", a.Bounds().Dy(), b.Bounds().Dy())
	}
}

func TestRasterize_DrawsInk(t *testing.T) {
	img, err := New(Options{Scale: 1}).Rasterize(sampleDocument(2))
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	var dark int
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x += 2 {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("image is blank")
	}
	if corner := color.GrayModel.Convert(img.At(0, 0)).(color.Gray); corner.Y != 255 {
		t.Errorf("corner = %v, want white margin", corner)
	}
}

func TestRasterize_ZeroScaleGivesEmptySurface(t *testing.T) {
	img, err := New(Options{Scale: 0}).Rasterize(sampleDocument(1))
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if !img.Bounds().Empty() {
		t.Errorf("bounds = %v, want empty", img.Bounds())
	}
}

func TestRasterize_NilDocument(t *testing.T) {
	if _, err := New(Options{Scale: 1}).Rasterize(nil); err == nil {
		t.Fatal("expected error for nil document")
	}
}

func TestWrap(t *testing.T) {
	if err := loadFonts(); err != nil {
		t.Fatal(err)
	}
	fs, err := newFaces(1)
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Close()
	p := &painter{faces: fs, scale: 1, width: BaseWidth}

	text := "Rupees One Lakh Twenty Three Thousand Four Hundred Fifty Six Only"
	w := p.measure(fs.regular, "Rupees One Lakh")
	lines := p.wrap(fs.regular, text, w)
	if len(lines) < 3 {
		t.Fatalf("got %d lines, want at least 3: %q", len(lines), lines)
	}
	for _, l := range lines {
		if p.measure(fs.regular, l) > w {
			t.Errorf("line %q wider than %d", l, w)
		}
	}
	if got := p.wrap(fs.regular, "   ", w); got != nil {
		t.Errorf("blank wrap = %q, want nil", got)
	}
}

func TestClean_SubstitutesRupeeSign(t *testing.T) {
	if err := loadFonts(); err != nil {
		t.Fatal(err)
	}
	fs, err := newFaces(1)
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Close()
	p := &painter{faces: fs, scale: 1}
	if got := p.clean(fs.regular, "₹ 118.00"); got != "Rs. 118.00" {
		t.Errorf("clean = %q", got)
	}
}
