// Package invoicefile reads invoices saved as YAML or JSON documents.
package invoicefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/diewo77/gst-invoices/internal/models"
	"github.com/diewo77/gst-invoices/internal/services"
	"github.com/diewo77/gst-invoices/validation"
	"gopkg.in/yaml.v3"
)

// File is the on-disk invoice. JSON documents are read through the same
// decoder since every JSON document is valid YAML.
type File struct {
	models.InvoiceFields `yaml:",inline"`

	SameAsConsignee bool               `yaml:"sameAsConsignee"`
	Items           []models.ItemInput `yaml:"items"`
}

// Read decodes one invoice document. Unknown keys are rejected.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("invoice file is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode invoice: %w", err)
	}
	return &f, nil
}

// Load opens and decodes path.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Workspace builds an editing workspace holding the file's contents. The
// consignee copy runs after the fields are set, the same order a user
// filling the form would follow.
func (f *File) Workspace(opts ...services.StoreOption) *services.Workspace {
	ws := services.NewWorkspace(opts...)
	ws.SetFields(f.InvoiceFields)
	ws.SetSameAsConsignee(f.SameAsConsignee)
	ws.Items().Load(f.Items)
	return ws
}

// Check lists advisory problems in the file. Rendering tolerates all of
// them: bad numbers count as zero.
func (f *File) Check() validation.Violations {
	v := validation.Violations{}
	validation.Required("sellerName", f.SellerName, v)
	validation.Required("invoiceNo", f.InvoiceNo, v)
	validation.Percent("cgstRate", f.CGSTRate, v)
	validation.Percent("sgstRate", f.SGSTRate, v)
	validation.Percent("igstRate", f.IGSTRate, v)
	for i, item := range f.Items {
		prefix := "items[" + strconv.Itoa(i) + "]."
		validation.Number(prefix+"quantity", string(item.Quantity), v)
		validation.NonNegative(prefix+"quantity", string(item.Quantity), v)
		validation.Number(prefix+"rate", string(item.Rate), v)
		validation.NonNegative(prefix+"rate", string(item.Rate), v)
	}
	return v
}
