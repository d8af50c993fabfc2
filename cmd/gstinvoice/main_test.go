package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/gst-invoices/internal/config"
	"github.com/urfave/cli/v2"
)

const invoiceYAML = `
sellerName: Acme Traders
invoiceNo: GST/24/007
consigneeName: Ship Co
sameAsConsignee: true
cgstRate: 9
sgstRate: 9
items:
  - description: Widget
    quantity: 2
    rate: 50
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("EXPORT_SETTLE_MS", "0")
	t.Setenv("EXPORT_VARIANT_PAUSE_MS", "0")
	t.Setenv("EXPORT_RASTER_SCALE", "1")
	app := newApp(config.Load())
	var out, errOut bytes.Buffer
	app.Writer, app.ErrWriter = &out, &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.RunContext(context.Background(), append([]string{"gstinvoice"}, args...))
	return out.String(), errOut.String(), err
}

func writeInvoice(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.yaml")
	if err := os.WriteFile(path, []byte(invoiceYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWords(t *testing.T) {
	out, _, err := run(t, "words", "100150.50")
	if err != nil {
		t.Fatalf("words: %v", err)
	}
	want := "Indian Rupees One Lakh One Hundred Fifty and Fifty Paise Only\n"
	if out != want {
		t.Errorf("got %q want %q", out, want)
	}
	if _, _, err := run(t, "words", "abc"); err == nil {
		t.Error("expected error for a non-numeric amount")
	}
	if _, _, err := run(t, "words", "1e50000000"); err == nil {
		t.Error("expected error for an out-of-range amount")
	}
}

func TestPreview(t *testing.T) {
	out, warnings, err := run(t, "preview", "--input", writeInvoice(t), "--copy", "duplicate")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if warnings != "" {
		t.Errorf("unexpected warnings: %q", warnings)
	}
	for _, want := range []string{"<!DOCTYPE html>", "Acme Traders", "DUPLICATE FOR TRANSPORTER", "Indian Rupees One Hundred Eighteen Only"} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q", want)
		}
	}
	if _, _, err := run(t, "preview", "--input", writeInvoice(t), "--copy", "triplicate"); err == nil {
		t.Error("expected error for unknown copy")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, "export", "-i", writeInvoice(t), "-o", dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	names := strings.Fields(out)
	if len(names) != 2 {
		t.Fatalf("names = %v", names)
	}
	if !strings.HasPrefix(names[0], "GST_24_007_Original_") || !strings.HasPrefix(names[1], "GST_24_007_Duplicate_") {
		t.Errorf("names = %v", names)
	}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Errorf("%s is not a PDF", name)
		}
	}
}

func TestExport_BadInput(t *testing.T) {
	if _, _, err := run(t, "export", "-i", filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, _, err := run(t, "export", "-i", writeInvoice(t), "--copy", "all"); err == nil {
		t.Error("expected error for an invalid copy selection")
	}
}

func TestExport_WarnsButRenders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.yaml")
	if err := os.WriteFile(path, []byte("items:\n  - description: Gift\n    rate: free\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, warnings, err := run(t, "export", "-i", path, "-o", t.TempDir(), "-c", "original")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(warnings, "warning: items[0].rate: not_a_number") {
		t.Errorf("warnings = %q", warnings)
	}
	if !strings.HasPrefix(out, "invoice_Original_") {
		t.Errorf("out = %q", out)
	}
}
