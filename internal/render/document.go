// Package render turns invoice data into a display-independent document
// tree. The tree holds plain text; adapters (HTML view, rasterizer) are
// responsible for escaping or drawing it.
package render

import "github.com/diewo77/gst-invoices/internal/models"

// ItemRows is the fixed number of rows in the item table.
const ItemRows = 10

// Document is a rendered invoice preview.
type Document struct {
	Variant models.CopyVariant
	Caption string
	Title   string

	Seller    Party
	Meta      []MetaCell
	Consignee Party
	Buyer     Party

	Items ItemTable

	Totals        []TotalLine
	AmountInWords string

	TaxSummary  TaxTable
	TaxInWords  string
	Declaration []string
	Bank        *BankDetails
	Signature   Signature

	Jurisdiction string
	Footnote     string
}

// SetVariant switches the copy caption. Nothing else depends on the variant.
func (d *Document) SetVariant(v models.CopyVariant) {
	d.Variant = v
	d.Caption = v.Label()
}

// Party is a seller, consignee or buyer block.
type Party struct {
	Title string
	Name  string
	// Address lines, one per line of the address field.
	Address []string
	// Optional "Label: value" lines.
	Details []string
}

// MetaCell is one label/value pair of the invoice details grid.
type MetaCell struct {
	Label string
	Value string
}

// ItemTable is the fixed-height item table.
type ItemTable struct {
	Header []string
	Rows   []ItemRow
	// Hidden counts valid items that did not fit into the table.
	Hidden int
}

// ItemRow is one display row. Spacer rows have every cell empty.
type ItemRow struct {
	Spacer      bool
	SerialNo    string
	Description string
	HSN         string
	Quantity    string
	Rate        string
	Per         string
	Amount      string
}

// Cells returns the row in column order.
func (r ItemRow) Cells() []string {
	return []string{r.SerialNo, r.Description, r.HSN, r.Quantity, r.Rate, r.Per, r.Amount}
}

// TotalLine is one label/value line of the totals block.
type TotalLine struct {
	Label string
	Value string
	Grand bool
}

// TaxTable is the per-HSN tax summary.
type TaxTable struct {
	Header []string
	Rows   [][]string
	Total  []string
}

// BankDetails is shown only when a bank name is present.
type BankDetails struct {
	Title string
	Lines []string
}

// Signature is the signatory block.
type Signature struct {
	For   string
	Label string
}
