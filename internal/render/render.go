package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/gst-invoices/internal/models"
	"github.com/diewo77/gst-invoices/internal/money"
	"github.com/diewo77/gst-invoices/internal/words"
	"github.com/shopspring/decimal"
)

const (
	title         = "TAX INVOICE"
	noHSN         = "N/A"
	metaBlank     = "-"
	footnote      = "This is a computer generated invoice"
	dateInLayout  = "2006-01-02"
	dateOutLayout = "2-Jan-2006"
)

var itemHeader = []string{"SI No.", "Description of Goods", "HSN/SAC", "Quantity", "Rate", "Per", "Amount"}

// tax describes one GST component for the totals block and summary table.
type tax struct {
	line    string
	column  string
	rate    decimal.Decimal
	amount  decimal.Decimal
	enabled bool
}

func taxesOf(t models.Totals) []tax {
	return []tax{
		{"CGST", "Central Tax Rate", t.CGSTRate, t.CGST, t.CGSTRate.IsPositive()},
		{"SGST", "State Tax Rate", t.SGSTRate, t.SGST, t.SGSTRate.IsPositive()},
		{"IGST", "IGST Rate", t.IGSTRate, t.IGST, t.IGSTRate.IsPositive()},
	}
}

// Render builds the preview document. Totals must have been computed over
// all stored items; only valid items are displayed.
func Render(f models.InvoiceFields, items []models.LineItem, totals models.Totals, variant models.CopyVariant) *Document {
	valid := make([]models.LineItem, 0, len(items))
	for i := range items {
		if items[i].IsValid() {
			valid = append(valid, items[i])
		}
	}
	taxes := taxesOf(totals)

	doc := &Document{
		Title:         title,
		Seller:        seller(f),
		Meta:          meta(f),
		Consignee:     party("Consignee (Ship to)", f.ConsigneeName, "Consignee Name", f.ConsigneeAddress, "Consignee Address", f.ConsigneeGSTIN, f.ConsigneeState),
		Buyer:         party("Buyer (Bill to)", f.BuyerName, "Buyer Name", f.BuyerAddress, "Buyer Address", f.BuyerGSTIN, f.BuyerState),
		Items:         itemTable(valid),
		Totals:        totalLines(totals, taxes),
		AmountInWords: words.Amount(totals.Total),
		TaxSummary:    taxSummary(valid, totals, taxes),
		TaxInWords:    words.Amount(totals.TaxTotal()),
		Declaration:   declaration(f.Declaration),
		Bank:          bank(f),
		Signature: Signature{
			For:   orDefault(f.SellerName, "Company Name"),
			Label: "Authorised Signatory",
		},
		Jurisdiction: strings.TrimSpace(f.Jurisdiction),
		Footnote:     footnote,
	}
	doc.SetVariant(variant)
	return doc
}

func seller(f models.InvoiceFields) Party {
	p := Party{
		Name:    orDefault(f.SellerName, "Company Name"),
		Address: lines(f.SellerAddress, "Company Address"),
	}
	p.Details = appendDetail(p.Details, "GSTIN/UIN", f.SellerGSTIN)
	p.Details = appendDetail(p.Details, "State Name", f.SellerState)
	p.Details = appendDetail(p.Details, "E-Mail", f.SellerEmail)
	p.Details = appendDetail(p.Details, "Phone", f.SellerPhone)
	return p
}

func party(title, name, namePlaceholder, address, addressPlaceholder, gstin, state string) Party {
	p := Party{
		Title:   title,
		Name:    orDefault(name, namePlaceholder),
		Address: lines(address, addressPlaceholder),
	}
	p.Details = appendDetail(p.Details, "GSTIN/UIN", gstin)
	p.Details = appendDetail(p.Details, "State Name", state)
	return p
}

func meta(f models.InvoiceFields) []MetaCell {
	return []MetaCell{
		{"Invoice No.", orDefault(f.InvoiceNo, metaBlank)},
		{"Dated", orDefault(formatDate(f.InvoiceDate), metaBlank)},
		{"Mode/Terms of Payment", orDefault(f.PaymentTerms, metaBlank)},
		{"Supplier's Ref.", orDefault(f.SupplierRef, metaBlank)},
		{"Buyer's Order No.", orDefault(f.BuyerOrderNo, metaBlank)},
		{"Dated", orDefault(formatDate(f.BuyerOrderDate), metaBlank)},
		{"Despatched Through", orDefault(f.DespatchThrough, metaBlank)},
		{"Destination", orDefault(f.Destination, metaBlank)},
	}
}

func itemTable(valid []models.LineItem) ItemTable {
	t := ItemTable{
		Header: itemHeader,
		Rows:   make([]ItemRow, ItemRows),
	}
	for i := range t.Rows {
		if i >= len(valid) {
			t.Rows[i] = ItemRow{Spacer: true}
			continue
		}
		it := valid[i]
		row := ItemRow{
			SerialNo:    strconv.Itoa(i + 1),
			Description: it.Description,
			HSN:         it.HSN,
			Quantity:    strings.TrimSpace(it.Quantity),
			Per:         it.Unit,
		}
		if strings.TrimSpace(it.Rate) != "" {
			row.Rate = money.Format(it.RateValue())
		}
		if !it.Amount.IsZero() {
			row.Amount = money.Format(it.Amount)
		}
		t.Rows[i] = row
	}
	if len(valid) > ItemRows {
		t.Hidden = len(valid) - ItemRows
	}
	return t
}

func totalLines(t models.Totals, taxes []tax) []TotalLine {
	out := []TotalLine{{Label: "Subtotal", Value: money.Format(t.Subtotal)}}
	for _, tx := range taxes {
		if !tx.enabled {
			continue
		}
		out = append(out, TotalLine{
			Label: tx.line + " @ " + money.FormatRate(tx.rate) + "%",
			Value: money.Format(tx.amount),
		})
	}
	if t.ShowRoundOff() {
		v := money.Format(t.RoundOff.Abs())
		if t.RoundOff.IsNegative() {
			v = "(-)" + v
		}
		out = append(out, TotalLine{Label: "Round Off", Value: v})
	}
	out = append(out, TotalLine{
		Label: "Total (" + money.FormatNumber(t.TotalQuantity) + " items)",
		Value: money.Symbol + " " + money.Format(t.Total),
		Grand: true,
	})
	return out
}

func taxSummary(valid []models.LineItem, t models.Totals, taxes []tax) TaxTable {
	var order []string
	taxable := map[string]decimal.Decimal{}
	for i := range valid {
		code := strings.TrimSpace(valid[i].HSN)
		if code == "" {
			code = noHSN
		}
		if _, ok := taxable[code]; !ok {
			order = append(order, code)
			taxable[code] = decimal.Zero
		}
		taxable[code] = taxable[code].Add(valid[i].Amount)
	}

	table := TaxTable{Header: []string{"HSN/SAC", "Taxable Value"}}
	table.Total = []string{"Total", money.Format(t.Subtotal)}
	for _, tx := range taxes {
		if tx.enabled {
			table.Header = append(table.Header, tx.column, "Amount")
			table.Total = append(table.Total, "", money.Format(tx.amount))
		}
	}
	table.Header = append(table.Header, "Total Tax")
	table.Total = append(table.Total, money.Format(t.TaxTotal()))

	for _, code := range order {
		value := taxable[code]
		row := []string{code, money.Format(value)}
		groupTax := decimal.Zero
		for _, tx := range taxes {
			if !tx.enabled {
				continue
			}
			amt := money.Percent(value, tx.rate)
			groupTax = groupTax.Add(amt)
			row = append(row, money.FormatRate(tx.rate)+"%", money.Format(amt))
		}
		row = append(row, money.Format(groupTax))
		table.Rows = append(table.Rows, row)
	}
	return table
}

func declaration(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{models.DefaultDeclaration}
	}
	return splitLines(text)
}

func bank(f models.InvoiceFields) *BankDetails {
	if strings.TrimSpace(f.BankName) == "" {
		return nil
	}
	b := &BankDetails{Title: "Company's Bank Details"}
	b.Lines = appendDetail(b.Lines, "Bank Name", f.BankName)
	b.Lines = appendDetail(b.Lines, "A/c No.", f.AccountNo)
	b.Lines = appendDetail(b.Lines, "Branch", f.BranchName)
	b.Lines = appendDetail(b.Lines, "IFSC Code", f.IFSCCode)
	return b
}

// formatDate prints an ISO date as 2-Jan-2006. Text that is not an ISO date
// is returned as typed.
func formatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	d, err := time.Parse(dateInLayout, s)
	if err != nil {
		return s
	}
	return d.Format(dateOutLayout)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func appendDetail(dst []string, label, value string) []string {
	if value = strings.TrimSpace(value); value != "" {
		return append(dst, label+": "+value)
	}
	return dst
}

func lines(text, placeholder string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{placeholder}
	}
	return splitLines(text)
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
